package domain

// Template is the reusable content-style configuration a generation run reads.
// It is created by an operator and never mutated by the pipeline.
type Template struct {
	ID      string
	Name    string
	Intent  string
	Persona string

	ArticleType string
	MinWords    int
	MaxWords    int
	// Headings lists mandatory heading texts, one per line.
	Headings string
	// Outline, when non-empty, replaces Headings with an explicit structural
	// outline that may contain ImagePlaceholder tokens.
	Outline    string
	SchemaType string

	TitleFormula    string
	MetaDescFormula string

	Tone        string
	Readability string
	AvoidWords  string

	// InternalLinks holds one "URL | context" entry per line.
	InternalLinks string
	DefaultTags   []string

	ImageProvider   string
	ImageCount      int
	ImageFeatured   bool
	ImageAttributed bool
}

// DefaultSchemaType is the schema type that needs no structuring hint and no
// JSON-LD generation step.
const DefaultSchemaType = "Article"

// ImageProviderNone disables image enrichment for the template.
const ImageProviderNone = "none"

// WithDefaults fills unset optional fields with the documented defaults and
// returns the result. Validation of loaded templates happens here, at the
// storage boundary.
func (t Template) WithDefaults() Template {
	if t.Intent == "" {
		t.Intent = "informational"
	}
	if t.Persona == "" {
		t.Persona = "General Audience"
	}
	if t.ArticleType == "" {
		t.ArticleType = "blog_post"
	}
	if t.MinWords <= 0 {
		t.MinWords = 1000
	}
	if t.MaxWords <= 0 {
		t.MaxWords = 2000
	}
	if t.SchemaType == "" {
		t.SchemaType = DefaultSchemaType
	}
	if t.TitleFormula == "" {
		t.TitleFormula = "{keyword} - A Complete Guide"
	}
	if t.MetaDescFormula == "" {
		t.MetaDescFormula = "Learn everything about {keyword} in this detailed guide."
	}
	if t.Tone == "" {
		t.Tone = "Professional"
	}
	if t.Readability == "" {
		t.Readability = "Grade 8"
	}
	if t.ImageProvider == "" {
		t.ImageProvider = ImageProviderNone
	}
	if t.ImageCount <= 0 {
		t.ImageCount = 3
	}
	return t
}

// WantsImages reports whether the template asks for stock-photo enrichment.
func (t Template) WantsImages() bool {
	return t.ImageProvider != "" && t.ImageProvider != ImageProviderNone && t.ImageCount > 0
}

// WantsSchema reports whether a JSON-LD generation step should run.
func (t Template) WantsSchema() bool {
	return t.SchemaType != "" && t.SchemaType != DefaultSchemaType
}
