package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/rooms"
)

var showFormat string

var (
	roomHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	roomMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)
)

// roomExport is the json/yaml shape of a room's history.
type roomExport struct {
	Room     rooms.Chatroom    `json:"room" yaml:"room"`
	Messages []history.Message `json:"messages" yaml:"messages"`
}

var showCmd = &cobra.Command{
	Use:   "show <room-id>",
	Short: "Print the full history of a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec := kv.Open(ctx, cfg.Storage.Path)
		defer rec.Close()

		hist := history.NewStore(rec)
		room, err := rooms.NewRegistry(rec, hist).Get(ctx, args[0])
		if errors.Is(err, rooms.ErrNotFound) {
			return fmt.Errorf("room not found: %s", args[0])
		}
		if err != nil {
			return err
		}
		return renderRoom(cmd.OutOrStdout(), room, hist.Load(ctx, room.ID), showFormat)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format: text, json or yaml")
}

func renderRoom(w io.Writer, room rooms.Chatroom, msgs []history.Message, format string) error {
	export := roomExport{Room: room, Messages: msgs}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(export)
	case "text", "":
		renderText(w, room, msgs)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func renderText(w io.Writer, room rooms.Chatroom, msgs []history.Message) {
	fmt.Fprintln(w, roomHeaderStyle.Render(room.Title))
	fmt.Fprintln(w, roomMetaStyle.Render(fmt.Sprintf("%s • %d message(s)", room.ID, len(msgs))))

	for _, m := range msgs {
		label, style := "You", userStyle
		if m.From == history.FromAssistant {
			label, style = "Assistant", assistantStyle
		}
		fmt.Fprintln(w, style.Render(label)+" "+timeStyle.Render(m.Time))

		content := m.Content
		if m.Type == history.KindImage {
			content = fmt.Sprintf("[image, %d bytes]", len(m.Content))
		}
		fmt.Fprintln(w, contentStyle.Render(content))
	}
}
