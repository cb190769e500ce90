package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/ocr"
	"github.com/joseph-ayodele/boletas/internal/repository"
	"github.com/joseph-ayodele/boletas/internal/service"
)

const clasico = `JUAN PÉREZ GONZÁLEZ
BOLETA DE HONORARIOS ELECTRONICA
N° 123
RUT: 12.345.678-9
Fecha / Hora Emisión: 15/03/2024 10:21
Total Honorarios: $28.000`

func startServer(t *testing.T) *ExtractionClient {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: "file:" + filepath.Join(t.TempDir(), "srv.db")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	svc, err := service.New(extract.Default(), nil,
		service.WithRuns(repository.NewParseRunRepository(db, nil)),
		service.WithTextExtractor(extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(UnaryRequestLogger(nil)))
	RegisterExtractionServer(s, NewExtractionService(svc, nil))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewExtractionClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestExtractText(t *testing.T) {
	c := startServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDHeader, "req-1")

	var header metadata.MD
	resp, err := c.Extract(ctx, mustStruct(t, map[string]any{"text": clasico, "source_name": "b.txt"}), grpc.Header(&header))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := header.Get(RequestIDHeader); len(got) != 1 || got[0] != "req-1" {
		t.Errorf("request id header = %v", got)
	}

	m := resp.AsMap()
	if m["source_name"] != "b.txt" {
		t.Errorf("source_name = %v", m["source_name"])
	}
	if _, err := uuid.Parse(m["run_id"].(string)); err != nil {
		t.Errorf("run_id = %v", m["run_id"])
	}
	result := m["result"].(map[string]any)
	if result["formatId"] != "sii_clasico" || result["confidence"] != 1.0 {
		t.Fatalf("result = %v", result)
	}
	fields := result["fields"].(map[string]any)
	if fields["totalAmount"] != 28000.0 || fields["issuerId"] != "12345678-9" {
		t.Errorf("fields = %v", fields)
	}
	if fields["recipientId"] != nil {
		t.Errorf("recipientId = %v, want null", fields["recipientId"])
	}
}

func TestExtractForcedBySynonym(t *testing.T) {
	c := startServer(t)
	resp, err := c.Extract(context.Background(), mustStruct(t, map[string]any{"text": clasico, "format": "Factura"}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	result := resp.AsMap()["result"].(map[string]any)
	if result["formatId"] != "factura_sii" || result["confidence"] != 1.0 {
		t.Fatalf("result = %v", result)
	}
}

func TestExtractFile(t *testing.T) {
	c := startServer(t)
	path := filepath.Join(t.TempDir(), "boleta.txt")
	if err := os.WriteFile(path, []byte(clasico), 0o644); err != nil {
		t.Fatal(err)
	}
	resp, err := c.Extract(context.Background(), mustStruct(t, map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	m := resp.AsMap()
	if m["source_name"] != "boleta.txt" || m["content_hash"] == "" {
		t.Errorf("response = %v", m)
	}
	if result := m["result"].(map[string]any); result["formatId"] != "sii_clasico" {
		t.Errorf("result = %v", result)
	}

	_, err = c.Extract(context.Background(), mustStruct(t, map[string]any{"path": filepath.Join(t.TempDir(), "missing.pdf")}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("missing file: %v", err)
	}
}

func TestExtractErrors(t *testing.T) {
	c := startServer(t)
	tests := []struct {
		name string
		req  map[string]any
		want codes.Code
	}{
		{"empty", map[string]any{}, codes.InvalidArgument},
		{"both", map[string]any{"text": clasico, "path": "/tmp/x.pdf"}, codes.InvalidArgument},
		{"unknown format", map[string]any{"text": clasico, "format": "boleta_x"}, codes.InvalidArgument},
		{"no text", map[string]any{"text": "  corto "}, codes.InvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Extract(context.Background(), mustStruct(t, tc.req))
			if status.Code(err) != tc.want {
				t.Fatalf("code = %v (%v), want %v", status.Code(err), err, tc.want)
			}
		})
	}
}

func TestListFormats(t *testing.T) {
	c := startServer(t)
	resp, err := c.ListFormats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	formats := resp.AsMap()["formats"].([]any)
	if len(formats) != 12 {
		t.Fatalf("len = %d", len(formats))
	}
	if first := formats[0].(map[string]any); first["id"] != "auto" {
		t.Errorf("first = %v", first)
	}
}

func TestRuns(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	resp, err := c.Extract(ctx, mustStruct(t, map[string]any{"text": clasico}))
	if err != nil {
		t.Fatal(err)
	}
	id := resp.AsMap()["run_id"].(string)

	run, err := c.GetRun(ctx, mustStruct(t, map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	rm := run.AsMap()
	if rm["status"] != "PARSED" || rm["format_id"] != "sii_clasico" {
		t.Errorf("run = %v", rm)
	}
	if _, ok := rm["text"]; ok {
		t.Error("run text should not be returned")
	}

	list, err := c.ListRuns(ctx, mustStruct(t, map[string]any{"status": "parsed", "limit": 10}))
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if runs := list.AsMap()["runs"].([]any); len(runs) != 1 {
		t.Errorf("runs = %v", runs)
	}

	_, err = c.GetRun(ctx, mustStruct(t, map[string]any{"id": uuid.NewString()}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("missing run: %v", err)
	}
	_, err = c.GetRun(ctx, mustStruct(t, map[string]any{"id": "nope"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("bad id: %v", err)
	}
	_, err = c.ListRuns(ctx, mustStruct(t, map[string]any{"limit": -1}))
	if st := status.Convert(err); st.Code() != codes.InvalidArgument || !strings.Contains(st.Message(), "got -1") {
		t.Errorf("negative limit: %v", err)
	}
}
