package excel

// Config controls how workbooks are opened and written
type Config struct {
	// CSVSheet names the single sheet of a CSV source; empty uses the file
	// name without its extension
	CSVSheet string `json:"csv_sheet" yaml:"csv_sheet"`
	// Author is recorded on comments written to the output
	Author string `json:"author" yaml:"author"`
}

// DefaultConfig returns the settings used by the command line
func DefaultConfig() Config {
	return Config{Author: "statkit"}
}
