package model

// Article data model. Articles are static fixtures, the Index is the
// position in the fixture list and doubles as the public identifier.
type Article struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
}
