package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"workspacemanager/internal/domain/models"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printNodes(w io.Writer, nodes []models.TreeNode) {
	for _, n := range nodes {
		name := n.Name
		if n.IsFolder {
			name += "/"
		}
		marker := " "
		if n.Hidden {
			marker = "h"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
}

func printResult(w io.Writer, result *models.VisibilityResult) {
	if result.Edits.Empty() {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, path := range models.ExcludeMap(result.Edits).Keys() {
		if result.Edits[path] {
			fmt.Fprintf(w, "+ %s\n", path)
		} else {
			fmt.Fprintf(w, "- %s\n", path)
		}
	}
}

func printExcludes(w io.Writer, excludes models.ExcludeMap) {
	for _, key := range excludes.Keys() {
		fmt.Fprintf(w, "%s\t%t\t%s\n", key, excludes[key], models.ClassifyKey(key))
	}
}
