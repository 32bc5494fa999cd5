package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/coolbeans/judge/pkg/render"
)

// printEmbed writes an embed in the selected output format.
func (env *environment) printEmbed(embed render.Embed) error {
	if env.format == "json" {
		return writeJSON(env.out, embed)
	}
	writeEmbedText(env.out, embed)
	return nil
}

func writeJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

// writeEmbedText renders an embed for a terminal.
func writeEmbedText(out io.Writer, embed render.Embed) {
	if embed.Title != "" {
		fmt.Fprintf(out, "=== %s ===\n", embed.Title)
	}
	if embed.URL != "" {
		fmt.Fprintln(out, embed.URL)
	}
	if embed.Description != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.TrimRight(embed.Description, "\n"))
	}
	for _, field := range embed.Fields {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "[%s]\n", field.Name)
		fmt.Fprintln(out, strings.TrimRight(field.Value, "\n"))
	}
	if embed.Image != "" {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Image: %s\n", embed.Image)
	}
	if embed.Footer != "" {
		fmt.Fprintf(out, "\n-- %s\n", embed.Footer)
	}
	fmt.Fprintln(out)
}
