package replay

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// Export format identifiers for ReplayRecorder output.
const (
	FormatJSON = "json"
	FormatGzip = "gzip"
)

// Export serializes tape in the requested format.
func Export(tape *Tape, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(tape)
	case FormatGzip:
		raw, err := json.Marshal(tape)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(raw); err != nil {
			return nil, err
		}
		if err := gw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("replay: unsupported export format %q", format)
	}
}

// Import reconstructs a Tape from bytes produced by Export.
func Import(data []byte, format string) (*Tape, error) {
	switch format {
	case FormatJSON:
		var tape Tape
		if err := json.Unmarshal(data, &tape); err != nil {
			return nil, err
		}
		return &tape, nil
	case FormatGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		raw, err := io.ReadAll(gr)
		if err != nil {
			return nil, err
		}
		var tape Tape
		if err := json.Unmarshal(raw, &tape); err != nil {
			return nil, err
		}
		return &tape, nil
	default:
		return nil, fmt.Errorf("replay: unsupported import format %q", format)
	}
}
