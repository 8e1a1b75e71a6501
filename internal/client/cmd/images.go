package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iamlokanath/imagehub/internal/client/gallery"
	"github.com/iamlokanath/imagehub/internal/client/session"
	"github.com/iamlokanath/imagehub/internal/models"
)

var errNotLoggedIn = errors.New("not logged in, run 'imagehub auth login' first")

type imagesClient struct {
	serverURL *string
}

func newImagesCmd(serverURL *string) *cobra.Command {
	i := &imagesClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "images", Short: "Manage the image collection"}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List visible images", RunE: i.list})

	upload := &cobra.Command{Use: "upload <file>", Short: "Upload an image", Args: cobra.ExactArgs(1), RunE: i.upload}
	upload.Flags().String("title", "", "image title (required)")
	upload.Flags().String("description", "", "image description")
	cmd.AddCommand(upload)

	cmd.AddCommand(&cobra.Command{Use: "delete <id>", Short: "Delete an image by id", Args: cobra.ExactArgs(1), RunE: i.delete})
	return cmd
}

// open initializes the session and returns an authenticated gallery.
func (i *imagesClient) open(cmd *cobra.Command) (*session.Session, *gallery.Gallery, error) {
	sess := newSession(*i.serverURL)
	if err := sess.Initialize(cmd.Context()); err != nil {
		return nil, nil, err
	}
	if sess.Status() != session.StatusAuthenticated {
		return nil, nil, errNotLoggedIn
	}
	return sess, gallery.New(sess), nil
}

func (i *imagesClient) list(cmd *cobra.Command, args []string) error {
	sess, g, err := i.open(cmd)
	if err != nil {
		return err
	}
	if err := g.FetchAll(cmd.Context()); err != nil {
		return err
	}

	images := g.Images()
	if len(images) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No images")
		return nil
	}
	for _, img := range images {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", img.ID, img.Title)
		if img.Description != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", img.Description)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", models.ResolveURL(sess.BaseURL(), img.ImageURL))
		if owner := img.Owner.User; owner != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "    uploaded by %s at %s\n", owner.Name, img.UploadedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func (i *imagesClient) upload(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, g, err := i.open(cmd)
	if err != nil {
		return err
	}

	draft := &gallery.Draft{
		Title:       title,
		Description: description,
		File:        f,
		Filename:    filepath.Base(args[0]),
	}
	if err := g.Upload(cmd.Context(), draft); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Uploaded")
	return nil
}

func (i *imagesClient) delete(cmd *cobra.Command, args []string) error {
	_, g, err := i.open(cmd)
	if err != nil {
		return err
	}
	if err := g.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
	return nil
}
