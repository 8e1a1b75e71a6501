// Package cmd implements the imagehub CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/iamlokanath/imagehub/internal/client/session"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "imagehub",
		Short: "ImageHub CLI",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newImagesCmd(&serverURL))
	return root
}

// newSession builds a session against the given server, persisting the
// token at its default location.
func newSession(serverURL string) *session.Session {
	store := session.NewFileTokenStore(session.DefaultTokenPath())
	return session.New(serverURL, store)
}
