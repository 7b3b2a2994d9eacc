package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// jobFile is the YAML layout of a job description:
//
//	name: kitchen
//	sheet: {width: 2440, height: 1220}
//	pieces:
//	  - {label: door, height: 700, width: 400, quantity: 2}
type jobFile struct {
	Name  string `yaml:"name"`
	Sheet struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"sheet"`
	Pieces []struct {
		Label    string  `yaml:"label"`
		Height   float64 `yaml:"height"`
		Width    float64 `yaml:"width"`
		Quantity int     `yaml:"quantity"`
	} `yaml:"pieces"`
}

// ImportYAML imports a job file. The sheet size is optional; when present it
// is returned in SheetWidth and SheetHeight.
func ImportYAML(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ParseYAML(data)
}

// ParseYAML parses job file content.
func ParseYAML(data []byte) ImportResult {
	result := ImportResult{}

	var jf jobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse YAML: %v", err))
		return result
	}

	result.Name = jf.Name
	if jf.Sheet.Width != 0 || jf.Sheet.Height != 0 {
		if jf.Sheet.Width <= 0 || jf.Sheet.Height <= 0 {
			result.Errors = append(result.Errors, "Sheet width and height must be positive")
		} else {
			result.SheetWidth, result.SheetHeight = jf.Sheet.Width, jf.Sheet.Height
		}
	}

	if len(jf.Pieces) == 0 {
		result.Errors = append(result.Errors, "No pieces listed")
		return result
	}

	var items []lineItem
	for i, p := range jf.Pieces {
		entry := fmt.Sprintf("Piece %d", i+1)
		if p.Height <= 0 || p.Width <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Height and width must be positive", entry))
			continue
		}
		qty := p.Quantity
		switch {
		case qty < 0:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Quantity must be positive", entry))
			continue
		case qty == 0:
			qty = 1
		}
		label := p.Label
		if label == "" {
			label = entry
		}
		items = append(items, lineItem{label: label, size: sizeOf(p.Height, p.Width), quantity: qty})
	}

	result.Rectangles = expand(items)
	return result
}
