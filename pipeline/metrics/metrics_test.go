package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordExport(t *testing.T) {
	before := testutil.ToFloat64(exportsTotal.WithLabelValues("Mesh", "success"))
	RecordExport("Mesh", "success", 10*time.Millisecond)
	RecordExport("Mesh", "malformed", time.Millisecond)
	if got := testutil.ToFloat64(exportsTotal.WithLabelValues("Mesh", "success")); got != before+1 {
		t.Errorf("success count = %v, want %v", got, before+1)
	}
}

func TestRecordTableEntry(t *testing.T) {
	before := testutil.ToFloat64(tableEntriesTotal.WithLabelValues("legacy", "skipped"))
	RecordTableEntry("legacy", "skipped")
	RecordTableEntry("legacy", "skipped")
	if got := testutil.ToFloat64(tableEntriesTotal.WithLabelValues("legacy", "skipped")); got != before+2 {
		t.Errorf("skipped = %v, want %v", got, before+2)
	}
}

func TestWriteTextfile(t *testing.T) {
	AddBytesWritten(128)
	RecordMirrorOperation("put", time.Millisecond, true)
	path := filepath.Join(t.TempDir(), "assetexport.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"assetexport_bytes_written_total", "assetexport_mirror_operations_total"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("textfile missing %s", name)
		}
	}
}
