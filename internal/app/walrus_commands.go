package app

import (
	"github.com/spf13/cobra"
)

func (s *runtimeState) newWalrusCommand() *cobra.Command {
	root := &cobra.Command{Use: "walrus", Short: "Blob storage via the walrus CLI"}

	var storePath string
	var epochs int
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Upload a file as a blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			result, err := s.blobs.Store(ctx, storePath, epochs)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil)
		},
	}
	storeCmd.Flags().StringVar(&storePath, "file", "", "Path of the file to upload")
	storeCmd.Flags().IntVar(&epochs, "epochs", 1, "Storage duration in epochs")
	_ = storeCmd.MarkFlagRequired("file")

	var blobID, outPath string
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Download a blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			status, err := s.blobs.Read(ctx, blobID, outPath)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), map[string]string{"status": status}, nil)
		},
	}
	readCmd.Flags().StringVar(&blobID, "blob-id", "", "Blob ID to fetch")
	readCmd.Flags().StringVar(&outPath, "out", "", "Destination file path")
	_ = readCmd.MarkFlagRequired("blob-id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List blobs owned by the active wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			blobs, err := s.blobs.List(ctx)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), blobs, nil)
		},
	}

	root.AddCommand(storeCmd)
	root.AddCommand(readCmd)
	root.AddCommand(listCmd)
	return root
}
