package asset

// Object is a loaded asset: a runtime type name plus its decoded field values.
// Objects are transient; the validator never keeps one past the walk of
// its subtree.
type Object struct {
	ID     Identifier
	Type   string
	Values map[string]any
}
