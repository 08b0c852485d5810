package rag

import (
	"fmt"
	"strings"
)

// Trigger phrases the grounded prompt instructs the model to emit when the
// course material cannot answer the question. Their presence in a Stage-1
// answer switches the composer to the web fallback.
const (
	insufficiencyTrigger = "Tài liệu chưa đề cập"
	noInformationPhrase  = "không có thông tin"
)

// noMaterialContext stands in for the context block when retrieval finds
// nothing in the course.
const noMaterialContext = "Không tìm thấy tài liệu nào liên quan trong khoá học."

// SourceInternet marks a fallback answer with no extractable reference links.
const SourceInternet = "Internet"

// Turn is one prior question/answer exchange in a tutoring conversation.
type Turn struct {
	Question string
	Answer   string
}

// buildGroundedPrompt assembles the Stage-1 prompt: course title, prior
// conversation, retrieved context, and instructions to answer from the
// material only, cite sources, and flag insufficient context with the
// trigger phrase.
func buildGroundedPrompt(courseTitle string, history []Turn, contextBlock, question string, sources []string) string {
	var historyPrompt strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&historyPrompt, "\nHọc viên: %s\nAI: %s\n", turn.Question, turn.Answer)
	}

	sourceList := "[không có]"
	if len(sources) > 0 {
		sourceList = strings.Join(sources, ", ")
	}

	return fmt.Sprintf(`Bạn là AI tutor cho khóa học "%s".
Lịch sử hội thoại trước đó:
%s
---
%s
---

Câu hỏi của học viên: %s

Yêu cầu:
- Chỉ trả lời dựa trên tài liệu của khoá học nếu có thông tin liên quan.
- Nếu trả lời dựa trên tài liệu, hãy ghi rõ nguồn bằng tiêu đề tài liệu (VD: "Nguồn: %s").
- Nếu tài liệu không có thông tin, hãy nói rõ "%s, tôi sẽ tìm trên internet cho bạn." và tự động tìm kiếm trên internet, trả lời ngắn gọn, dễ hiểu, kèm đường link nguồn tham khảo.
- Luôn trả lời bằng tiếng Việt, văn phong thân thiện, dễ hiểu.
- Luôn ghi rõ nguồn tham khảo cuối câu trả lời.
`, courseTitle, historyPrompt.String(), contextBlock, question, sourceList, insufficiencyTrigger)
}

// buildWebPrompt assembles the Stage-2 prompt: no course context, answer
// from general knowledge and cite full links.
func buildWebPrompt(courseTitle, question string) string {
	return fmt.Sprintf(`Bạn là AI tutor cho khóa học "%s".
Câu hỏi của học viên: %s

Yêu cầu:
- Tìm kiếm thông tin trên internet để trả lời câu hỏi trên.
- Trả lời ngắn gọn, dễ hiểu, bằng tiếng Việt.
- Luôn ghi rõ nguồn tham khảo (đường link) cuối câu trả lời.
- Khi ghi nguồn tham khảo, hãy để đường link đầy đủ. Ví dụ: "Nguồn: https://example.com"
`, courseTitle, question)
}
