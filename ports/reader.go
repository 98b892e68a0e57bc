package ports

import "epmstat/domain/epm"

// TableReader loads the parameter-by-column measurement table from whatever
// backs it (xlsx worksheet, csv export). The core never touches files.
type TableReader interface {
	ReadTable() (*epm.Table, error)
}
