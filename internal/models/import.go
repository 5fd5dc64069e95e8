package models

// ValidationError describes a problem with a single legacy file during import
type ValidationError struct {
	File    string `json:"file"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportReport summarizes a legacy import run
type ImportReport struct {
	Scanned  int               `json:"scanned"`
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// FrontMatter is the optional YAML header of a legacy Markdown file
type FrontMatter struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Date     string `yaml:"date"`
	Status   string `yaml:"status"`
	Excerpt  string `yaml:"excerpt"`
}
