// Package walrus shells out to the walrus CLI for blob storage alongside the
// coin tooling, reusing the same process boundary and error mapping.
package walrus

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/parse"
	"github.com/afuentes/suicoin/internal/suiexec"
)

// DefaultBinary is the storage CLI name probed on PATH.
const DefaultBinary = "walrus"

// Blob describes one stored blob as reported by the CLI.
type Blob struct {
	BlobID   string `json:"blobId"`
	ObjectID string `json:"objectId,omitempty"`
	Size     uint64 `json:"size,omitempty"`
	EndEpoch uint64 `json:"endEpoch,omitempty"`
}

// StoreResult reports the outcome of a store call. Certified is true when the
// blob was already present on the network and no new object was created.
type StoreResult struct {
	Blob      Blob `json:"blob"`
	Certified bool `json:"alreadyCertified"`
}

// Service wraps the walrus binary.
type Service struct {
	exec suiexec.Runner
	log  zerolog.Logger
}

func NewService(exec suiexec.Runner, log zerolog.Logger) *Service {
	return &Service{exec: exec, log: log}
}

// store output shapes; the CLI reports exactly one of the two branches per
// file.
type storeEntry struct {
	BlobStoreResult struct {
		NewlyCreated *struct {
			BlobObject struct {
				ID      string `json:"id"`
				BlobID  string `json:"blobId"`
				Size    uint64 `json:"size"`
				Storage struct {
					EndEpoch uint64 `json:"endEpoch"`
				} `json:"storage"`
			} `json:"blobObject"`
		} `json:"newlyCreated"`
		AlreadyCertified *struct {
			BlobID   string `json:"blobId"`
			EndEpoch uint64 `json:"endEpoch"`
		} `json:"alreadyCertified"`
	} `json:"blobStoreResult"`
}

// Store uploads one file for the given number of epochs.
func (s *Service) Store(ctx context.Context, path string, epochs int) (StoreResult, error) {
	if strings.TrimSpace(path) == "" {
		return StoreResult{}, clierr.New(clierr.CodeUsage, "file path is required")
	}
	if epochs <= 0 {
		epochs = 1
	}
	args := []string{"store", path, "--epochs", strconv.Itoa(epochs)}
	out, err := s.run(ctx, args, true)
	if err != nil {
		return StoreResult{}, err
	}

	var entries []storeEntry
	if decodeErr := json.Unmarshal([]byte(out), &entries); decodeErr != nil {
		// Older releases emit a single object rather than a list.
		var single storeEntry
		if json.Unmarshal([]byte(out), &single) != nil {
			return StoreResult{}, clierr.New(clierr.CodeParse, "could not interpret store output")
		}
		entries = []storeEntry{single}
	}
	if len(entries) == 0 {
		return StoreResult{}, clierr.New(clierr.CodeParse, "empty store output")
	}

	res := entries[0].BlobStoreResult
	switch {
	case res.NewlyCreated != nil:
		obj := res.NewlyCreated.BlobObject
		return StoreResult{Blob: Blob{
			BlobID:   obj.BlobID,
			ObjectID: obj.ID,
			Size:     obj.Size,
			EndEpoch: obj.Storage.EndEpoch,
		}}, nil
	case res.AlreadyCertified != nil:
		return StoreResult{
			Blob:      Blob{BlobID: res.AlreadyCertified.BlobID, EndEpoch: res.AlreadyCertified.EndEpoch},
			Certified: true,
		}, nil
	default:
		return StoreResult{}, clierr.New(clierr.CodeParse, "store output named no blob")
	}
}

// Read fetches a blob into outPath and returns the CLI's status line.
func (s *Service) Read(ctx context.Context, blobID, outPath string) (string, error) {
	if strings.TrimSpace(blobID) == "" {
		return "", clierr.New(clierr.CodeUsage, "blob id is required")
	}
	args := []string{"read", blobID}
	if outPath != "" {
		args = append(args, "--out", outPath)
	}
	out, err := s.run(ctx, args, false)
	if err != nil {
		return "", err
	}
	return parse.SanitizeOutput(out), nil
}

// List reports the blobs owned by the active wallet.
func (s *Service) List(ctx context.Context) ([]Blob, error) {
	out, err := s.run(ctx, []string{"list-blobs"}, true)
	if err != nil {
		return nil, err
	}
	var blobs []Blob
	if decodeErr := json.Unmarshal([]byte(out), &blobs); decodeErr != nil {
		return nil, clierr.Wrap(clierr.CodeParse, "could not interpret blob listing", decodeErr)
	}
	return blobs, nil
}

func (s *Service) run(ctx context.Context, args []string, jsonOut bool) (string, error) {
	out, err := s.exec.Run(ctx, args, suiexec.Options{JSONOutput: jsonOut})
	if err != nil {
		if cErr, ok := clierr.As(err); ok {
			return "", clierr.New(cErr.Code, parse.SanitizeError(cErr.Message))
		}
		return "", err
	}
	return out, nil
}
