package configs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EncodeTOML writes header verbatim followed by data encoded as TOML.
func EncodeTOML(w io.Writer, header []byte, data any) error {
	if _, err := w.Write(header); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(data)
}

// SaveTOML saves a struct to a TOML file, preceded by header. It refuses to
// replace an existing file.
func SaveTOML(filePath string, header []byte, data any) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeTOML(&buf, header, data); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadTOML loads a TOML file into a struct. The returned metadata reports
// keys that did not map onto any field.
func LoadTOML(filePath string, data any) (toml.MetaData, error) {
	return toml.DecodeFile(filePath, data)
}
