package projection

import "chat-client/domain"

// View is what a renderer redraws from scratch each time.
type View struct {
	Messages []domain.Message
	Criteria []domain.Criterion
	Filtered bool
	Selected []string
}
