package model

// QueryArg is one (arg-name, arg-value) pair from an HTTP request's URL
// query string.
type QueryArg struct {
	Name  string
	Value string
}

// QueryArgs is an ordered sequence of query arguments, preserving
// first-seen occurrence per arg-name.
type QueryArgs []QueryArg

// Recognized arg-names; any other name makes a query invalid.
const (
	ArgExclude   = "exclude"
	ArgVirtualIf = "virtual_if"
	ArgVirtualIP = "virtual_ip"
)
