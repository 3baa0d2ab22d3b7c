package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is one titled table of a document, optionally followed by footer lines.
type Section struct {
	Heading string
	Data    Dataset
	Footer  []string
}

// Field is a labelled summary value.
type Field struct {
	Label string
	Value string
}

// Document is a multi-section report rendered by both exporters.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
	Summary  []Field
}

func (d Document) validate() error {
	for _, section := range d.Sections {
		if len(section.Data.Headers) == 0 {
			return errEmptyHeaders
		}
	}
	return nil
}
