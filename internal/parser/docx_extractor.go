package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxExtractor 先输出正文段落，再逐行输出表格，单元格以 " | " 连接
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor { return &DocxExtractor{} }

func (d *DocxExtractor) Name() string { return "docx" }

func (d *DocxExtractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx %s: %w", filename, err)
	}
	defer doc.Close()

	text, err := documentText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to parse docx %s: %w", filename, err)
	}
	return text, nil
}

// documentText 遍历 word/document.xml。表格内的段落归入单元格，不计入正文段落。
func documentText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		rows       []string
		tblDepth   int
		para       strings.Builder
		inPara     bool
		inRun      bool
		inText     bool
		cellParas  []string
		cells      []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				cells = cells[:0]
			case "tc":
				cellParas = cellParas[:0]
			case "p":
				inPara = true
				para.Reset()
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// 段落属性里的 w:tabs/w:tab 是制表位定义，只有 run 内的才是字符
				if inPara && inRun {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inPara && inRun {
					para.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inPara && inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				inRun = false
			case "p":
				inPara = false
				if tblDepth > 0 {
					cellParas = append(cellParas, para.String())
				} else if strings.TrimSpace(para.String()) != "" {
					paragraphs = append(paragraphs, para.String())
				}
			case "tc":
				cells = append(cells, strings.TrimSpace(strings.Join(cellParas, "\n")))
			case "tr":
				if row, ok := joinRow(cells); ok {
					rows = append(rows, row)
				}
			case "tbl":
				tblDepth--
			}
		}
	}

	return strings.Join(append(paragraphs, rows...), "\n"), nil
}

// joinRow 全部单元格为空的行跳过
func joinRow(cells []string) (string, bool) {
	for _, c := range cells {
		if c != "" {
			return strings.Join(cells, " | "), true
		}
	}
	return "", false
}
