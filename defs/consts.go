package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelName      = "name"
	LabelPart      = "part"

	LabelAddress = "address"
	LabelClient  = "client"
	LabelServer  = "server"

	LabelPartitionKey = "partitionKey"
)

// Reasons of dropped entries, used as metric labels
const (
	DropReasonOverflow = "overflow" // buffer full at Post time
	DropReasonOversize = "oversize" // excluded by the size budget of automatic batching
	DropReasonAbandon  = "abandon"  // left undelivered when shutdown timed out
	DropReasonFailed   = "failed"   // lost with a failed flush cycle, never retried
	DropReasonStopped  = "stopped"  // posted after shutdown began
	DropReasonFiltered = "filtered" // excluded by input filters
)
