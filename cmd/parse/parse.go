// Package parse handles offline parsing of receipt files
package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"iodono/rt-register/cmd/root"
	"iodono/rt-register/internal/models"
	"iodono/rt-register/internal/rtparser"
	"iodono/rt-register/internal/validation"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a Ricevuta Telematica file",
	Long: `Parse a Ricevuta Telematica XML file (or its base64 encoding), validate it
and print the extracted record as JSON.`,
	Run: parseFunc,
}

func parseFunc(cmd *cobra.Command, args []string) {
	root.Log.Infof("Parsing receipt file: %s", root.InputFile)

	if err := validation.IsValidInputFile(root.InputFile); err != nil {
		root.Log.Fatalf("Invalid input: %v", err)
	}

	content, err := os.ReadFile(root.InputFile)
	if err != nil {
		root.Log.Fatalf("Error reading input file: %v", err)
	}

	var rt *models.RTData
	if root.InputBase64 {
		rt, err = rtparser.Parse(strings.TrimSpace(string(content)))
	} else {
		rt, err = rtparser.ParseDocument(content)
	}
	if err != nil {
		root.Log.Fatalf("Error parsing receipt: %v", err)
	}

	out, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		root.Log.Fatalf("Error encoding record: %v", err)
	}
	fmt.Println(string(out))

	root.Log.WithField("blob", rt.BlobName()).Info("Receipt parsed successfully")
}
