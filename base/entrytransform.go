package base

// EntryTransform modifies entries at input before they are posted
//
// Transforms run on the goroutine of an input connection and may be shared by many connections
type EntryTransform interface {
	Transform(entry *LogEntry)
}

// EntryTransforms is a list of transforms to be applied in order
type EntryTransforms []EntryTransform

// Apply runs all transforms on the entry
func (list EntryTransforms) Apply(entry *LogEntry) {
	for _, tf := range list {
		tf.Transform(entry)
	}
}
