package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/hydration"
)

var (
	favoriteColor   = color.New(color.FgYellow, color.Bold)
	idColor         = color.New(color.Faint)
	processedColor  = color.New(color.FgGreen)
	processingColor = color.New(color.FgCyan)
	failedColor     = color.New(color.FgRed)
	unknownColor    = color.New(color.FgMagenta)
)

func printChats(w io.Writer, chats []domain.ChatItem, f *hydration.DateFormatter) {
	if len(chats) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range chats {
		star := " "
		if c.IsFavorite {
			star = favoriteColor.Sprint("*")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", star, idColor.Sprint(c.ID), c.Title, f.Format(c.Date))
	}
	_ = tw.Flush()
}

func statusColor(s domain.IngestionStatus) *color.Color {
	if !s.Valid() {
		return unknownColor
	}
	switch s {
	case domain.StatusProcessed:
		return processedColor
	case domain.StatusProcessing:
		return processingColor
	default:
		return failedColor
	}
}

func printDocuments(w io.Writer, docs []domain.IngestedDataInfo) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents have been ingested.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tTYPE\tUPLOADED\tSIZE\tSTATUS")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.FileName, d.FileType, d.UploadDate, d.Size, statusColor(d.Status).Sprint(d.Status))
	}
	_ = tw.Flush()
}
