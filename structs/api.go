package structs

// Tutoring, flashcard, essay and social request bodies.

type ChatRequest struct {
	SessionID   string `json:"sessionId"`
	Subject     string `json:"subject" binding:"required"`
	Mode        string `json:"mode"`
	Language    string `json:"language"`
	Message     string `json:"message" binding:"required"`
	ResourceURL string `json:"resourceUrl"`
}

type AnswerFromLinkRequest struct {
	URL      string `json:"url" binding:"required,url"`
	Question string `json:"question" binding:"required"`
	Subject  string `json:"subject"`
}

type AddNoteRequest struct {
	Subject string `json:"subject" binding:"required"`
	Source  string `json:"source" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

type DeleteNotesRequest struct {
	Subject string `json:"subject" binding:"required"`
	Source  string `json:"source"`
}

type GenerateFlashcardsRequest struct {
	DeckID     string `json:"deckId"`
	Subject    string `json:"subject" binding:"required"`
	Title      string `json:"title"`
	Topic      string `json:"topic" binding:"required"`
	Count      int    `json:"count"`
	SourceText string `json:"sourceText"`
}

type AddCardRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

type MarkEssayRequest struct {
	Subject   string `json:"subject" binding:"required"`
	PaperType string `json:"paperType"`
	Prompt    string `json:"prompt" binding:"required"`
	Body      string `json:"body" binding:"required"`
}

type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
	Subject string `json:"subject"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type UpdateProfileRequest struct {
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio"`
	Subjects    []string `json:"subjects"`
	Tier        string   `json:"tier"`
}
