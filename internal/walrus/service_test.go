package walrus

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/suiexec"
)

type fakeRunner struct {
	lastArgs []string
	lastOpts suiexec.Options
	out      string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, args []string, opts suiexec.Options) (string, error) {
	f.lastArgs = append([]string(nil), args...)
	f.lastOpts = opts
	return f.out, f.err
}

func TestStoreNewlyCreated(t *testing.T) {
	runner := &fakeRunner{out: `[{"blobStoreResult":{"newlyCreated":{"blobObject":{"id":"0xobj","blobId":"blob-1","size":512,"storage":{"endEpoch":42}}}},"path":"notes.txt"}]`}
	svc := NewService(runner, zerolog.Nop())

	res, err := svc.Store(context.Background(), "notes.txt", 3)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if res.Certified || res.Blob.BlobID != "blob-1" || res.Blob.ObjectID != "0xobj" || res.Blob.EndEpoch != 42 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := []string{"store", "notes.txt", "--epochs", "3"}
	if strings.Join(runner.lastArgs, " ") != strings.Join(want, " ") {
		t.Fatalf("args = %v, want %v", runner.lastArgs, want)
	}
	if !runner.lastOpts.JSONOutput {
		t.Fatal("store should request JSON output")
	}
}

func TestStoreAlreadyCertified(t *testing.T) {
	runner := &fakeRunner{out: `{"blobStoreResult":{"alreadyCertified":{"blobId":"blob-2","endEpoch":7}}}`}
	svc := NewService(runner, zerolog.Nop())

	res, err := svc.Store(context.Background(), "notes.txt", 0)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !res.Certified || res.Blob.BlobID != "blob-2" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if runner.lastArgs[3] != "1" {
		t.Fatalf("epochs should default to 1, got %v", runner.lastArgs)
	}
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	svc := NewService(&fakeRunner{}, zerolog.Nop())
	_, err := svc.Store(context.Background(), "  ", 1)
	if clierr.CodeOf(err) != clierr.CodeUsage {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestStoreGarbageOutput(t *testing.T) {
	svc := NewService(&fakeRunner{out: "not json"}, zerolog.Nop())
	_, err := svc.Store(context.Background(), "notes.txt", 1)
	if clierr.CodeOf(err) != clierr.CodeParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestReadSanitizesOutput(t *testing.T) {
	runner := &fakeRunner{out: "wrote blob for suiprivkey1abc owner"}
	svc := NewService(runner, zerolog.Nop())

	out, err := svc.Read(context.Background(), "blob-1", "dest.bin")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if strings.Contains(out, "suiprivkey") {
		t.Fatalf("secret leaked: %q", out)
	}
	if runner.lastOpts.JSONOutput {
		t.Fatal("read must not request JSON output")
	}
	want := "read blob-1 --out dest.bin"
	if strings.Join(runner.lastArgs, " ") != want {
		t.Fatalf("args = %v", runner.lastArgs)
	}
}

func TestListDecodesBlobs(t *testing.T) {
	runner := &fakeRunner{out: `[{"blobId":"blob-1","objectId":"0xobj","size":10,"endEpoch":5},{"blobId":"blob-2"}]`}
	svc := NewService(runner, zerolog.Nop())

	blobs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(blobs) != 2 || blobs[0].BlobID != "blob-1" || blobs[1].BlobID != "blob-2" {
		t.Fatalf("unexpected blobs: %+v", blobs)
	}
}

func TestProcessErrorsAreSanitized(t *testing.T) {
	runner := &fakeRunner{err: clierr.New(clierr.CodeProcess, "Error: wallet missing at /home/u/.config/walrus/client.yaml")}
	svc := NewService(runner, zerolog.Nop())

	_, err := svc.List(context.Background())
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeProcess {
		t.Fatalf("expected process error, got %v", err)
	}
	if strings.Contains(cErr.Message, "/home/") || strings.HasPrefix(cErr.Message, "Error:") {
		t.Fatalf("error not sanitized: %q", cErr.Message)
	}
}
