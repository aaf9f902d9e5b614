package schema

// Annotation is used to attach arbitrary metadata to the schema objects.
// Consumers look annotations up by Name.
type Annotation interface {
	// Name defines the name of the annotation to be retrieved by consumers.
	Name() string
}

// Merger wraps the single Merge function allows custom annotation to provide
// an implementation for merging 2 or more annotations from the same type.
type Merger interface {
	Merge(Annotation) Annotation
}

// CommentAnnotation is a builtin schema annotation for
// attaching a comment to a model.
type CommentAnnotation struct {
	Text string
}

// Name implements the Annotation interface.
func (*CommentAnnotation) Name() string {
	return "Comment"
}

// Comment is a builtin schema annotation for attaching a comment to a model.
func Comment(text string) *CommentAnnotation {
	return &CommentAnnotation{Text: text}
}

// CommentOf returns the text of the last comment annotation in list.
func CommentOf(list []Annotation) string {
	var text string
	for _, a := range list {
		if c, ok := a.(*CommentAnnotation); ok && c != nil {
			text = c.Text
		}
	}
	return text
}
