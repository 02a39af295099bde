package models

// SlideRecord is the extracted text of a single slide, in slide order.
// Content is newline-joined body lines with recognized boilerplate removed.
type SlideRecord struct {
	SlideNum int    `json:"slide_num"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}
