package etl

// Page names a wiki page an artifact is published to. Condition, when set,
// limits when the page applies.
type Page struct {
	Page      string `json:"page"`
	Condition string `json:"condition,omitempty"`
}

// Artifact is one serialized dataset with its output name and pages.
type Artifact struct {
	Dataset string `json:"dataset"`
	OutFile string `json:"outFile"`
	Text    string `json:"-"`
	Pages   []Page `json:"pages"`
}

// Result accumulates the artifacts of one exporter run.
type Result struct {
	Artifacts []Artifact
}

// Add appends the rendered text as the artifact for outFile.
func (r *Result) Add(dataset, outFile, text string, pages ...string) {
	a := Artifact{Dataset: dataset, OutFile: outFile, Text: text}
	for _, p := range pages {
		a.Pages = append(a.Pages, Page{Page: p})
	}
	r.Artifacts = append(r.Artifacts, a)
}
