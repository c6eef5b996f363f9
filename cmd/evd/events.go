package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/idgen"
	"github.com/eventdeck/eventdeck/internal/store"
	"github.com/eventdeck/eventdeck/internal/ui"
)

var (
	flagTitle       string
	flagDescription string
	flagLongDesc    string
	flagEventDate   string
	flagDisplayFrom string
	flagTags        string
	flagGroup       string
)

func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagTitle, "title", "", "event title")
	cmd.Flags().StringVar(&flagDescription, "description", "", "short description")
	cmd.Flags().StringVar(&flagLongDesc, "long-description", "", "long description")
	cmd.Flags().StringVar(&flagEventDate, "date", "", "event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagDisplayFrom, "display-from", "", "display-from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&flagGroup, "group", "", "group id")
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new event",
	Long: `Create a new event with a freshly generated id.

Ids combine the current date, a short device fingerprint, and a
per-day counter: 20250601-AB12-003.`,
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		id := idgen.Next(idgen.Prefix(time.Now()), st.IDs())
		evt := &store.Event{
			ID:                  id,
			Title:               flagTitle,
			Description:         flagDescription,
			LongDescription:     flagLongDesc,
			EventDate:           flagEventDate,
			DisplayFromDate:     flagDisplayFrom,
			Tags:                parseTags(flagTags),
			GroupID:             flagGroup,
			UpdatedNotSubmitted: true,
		}

		if err := st.Add(evt); err != nil {
			fatalf("%v", err)
		}
		if err := st.Save(); err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("%s Created event %s\n", ui.RenderSuccess("✓"), ui.RenderAccent(id))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all events",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		if st.Len() == 0 {
			fmt.Println("No events.")
			return
		}
		for _, e := range st.Events() {
			marker := " "
			if e.UpdatedNotSubmitted {
				marker = ui.RenderWarning("*")
			}
			date := e.EventDate
			if date == "" {
				date = "          "
			}
			fmt.Printf("%s %s  %s  %s\n", marker, ui.RenderAccent(e.ID), date, e.Title)
		}
		fmt.Println(ui.RenderDim("* = updated, not yet submitted"))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one event in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		e := st.Get(args[0])
		if e == nil {
			fatalf("event %s not found", args[0])
		}

		fmt.Printf("%s %s\n", ui.RenderAccent(e.ID), e.Title)
		if e.EventDate != "" {
			fmt.Printf("  date:         %s\n", e.EventDate)
		}
		if e.DisplayFromDate != "" {
			fmt.Printf("  display from: %s\n", e.DisplayFromDate)
		}
		if e.Description != "" {
			fmt.Printf("  description:  %s\n", e.Description)
		}
		if e.LongDescription != "" {
			fmt.Printf("  long:         %s\n", e.LongDescription)
		}
		if len(e.Tags) > 0 {
			fmt.Printf("  tags:         %s\n", strings.Join(e.Tags, ", "))
		}
		if e.GroupID != "" {
			fmt.Printf("  group:        %s\n", e.GroupID)
		}
		for _, variant := range []string{store.VariantFull, store.VariantSmall, store.VariantThumb} {
			if url := *e.ImageURL(variant); url != "" {
				fmt.Printf("  %-5s image:  %s\n", variant, url)
			}
		}
		fmt.Printf("  images uploaded: %v\n", e.ImagesUploaded)
		fmt.Printf("  needs submission: %v\n", e.UpdatedNotSubmitted)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <event-id>",
	Short: "Edit event fields",
	Long: `Edit an event. Only the flags given change fields; everything else
is left alone. Any edit marks the event as needing submission.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		e := st.Get(args[0])
		if e == nil {
			fatalf("event %s not found", args[0])
		}

		changed := false
		set := func(flag string, dst *string, value string) {
			if cmd.Flags().Changed(flag) {
				*dst = value
				changed = true
			}
		}
		set("title", &e.Title, flagTitle)
		set("description", &e.Description, flagDescription)
		set("long-description", &e.LongDescription, flagLongDesc)
		set("date", &e.EventDate, flagEventDate)
		set("display-from", &e.DisplayFromDate, flagDisplayFrom)
		set("group", &e.GroupID, flagGroup)
		if cmd.Flags().Changed("tags") {
			e.Tags = parseTags(flagTags)
			changed = true
		}

		if !changed {
			fmt.Println("Nothing to change.")
			return
		}

		e.UpdatedNotSubmitted = true
		if err := st.Save(); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("%s Updated %s\n", ui.RenderSuccess("✓"), ui.RenderAccent(e.ID))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		e := st.Get(args[0])
		if e == nil {
			fatalf("event %s not found", args[0])
		}

		if err := st.Delete(e.ID); err != nil {
			fatalf("%v", err)
		}
		if err := st.Save(); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("%s Deleted %s (%s)\n", ui.RenderSuccess("✓"), ui.RenderAccent(e.ID), e.Title)
	},
}

func init() {
	addEventFlags(addCmd)
	addEventFlags(editCmd)
}
