package app

// Operation statuses recorded when an operation finishes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks a CLI command that may mutate the catalog.
// Operations are created in memory with ID=0. Only catalog-mutating commands
// persist them (giving them an auto-increment ID from the database), and the
// ID doubles as the version of the snapshot taken on Close.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // StatusSuccess or StatusError
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}
