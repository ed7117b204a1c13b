package archive

// Exporter defines the contract for snapshot storage backends
type Exporter interface {
	Store(name string, data []byte) error
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}
