package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// stdinPath names standard input as a command argument.
const stdinPath = "-"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// readTrace reads a trace file, or stdin for "-".
func readTrace(path string) ([]trace.Measure, error) {
	if path == stdinPath {
		return trace.ReadTrace(os.Stdin)
	}
	return trace.ReadTraceFile(path)
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output ends in
// a known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinPath {
			return "trace"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.IsFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeJSONFile writes v as indented JSON to path, or stdout when path is
// empty.
func writeJSONFile(path string, v any) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
