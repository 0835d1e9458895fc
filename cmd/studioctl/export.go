package main

import (
	"fmt"
	"os"
	"path/filepath"

	"studio-go/internal/artifact"
	"studio-go/internal/dto"
	"studio-go/internal/export"
	"studio-go/internal/utils"
	"studio-go/internal/workshop"

	"github.com/spf13/cobra"
)

type exportOptions struct {
	tool     string
	in       string
	format   string
	out      string
	name     string
	pageSize string
	fontSize float64
}

func newExportCmd() *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "把生成结果导出为 pdf/docx/xlsx/pptx/png 文件",
		Example: "  studioctl export --tool rubrica --in artifact.json --format xlsx --out ./salida",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.tool, "tool", "", "生成工具名称")
	cmd.Flags().StringVar(&opts.in, "in", "", "后端返回内容所在文件")
	cmd.Flags().StringVar(&opts.format, "format", "pdf", "导出格式")
	cmd.Flags().StringVar(&opts.out, "out", ".", "输出目录")
	cmd.Flags().StringVar(&opts.name, "name", "", "文件名，默认取标题")
	cmd.Flags().StringVar(&opts.pageSize, "page", "A4", "PDF纸张大小")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 11, "PDF字号")
	_ = cmd.MarkFlagRequired("tool")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	tool, err := workshop.NewRegistry().Get(opts.tool)
	if err != nil {
		return err
	}
	if err := utils.ValidateStruct(&dto.ExportQuery{Format: opts.format, Name: opts.name}); err != nil {
		return err
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("读取输入失败: %w", err)
	}

	a := artifact.Decode(tool.Kind, string(raw))
	a.Tool = tool.Name
	if a.Malformed {
		fmt.Fprintln(cmd.ErrOrStderr(), "警告: 输入不是有效JSON，按文本导出")
	}

	doc := export.FromArtifact(a)
	name := opts.name
	if name == "" {
		name = doc.Title
	}

	registry := export.NewRegistry(export.Options{PageFormat: opts.pageSize, FontSize: opts.fontSize})
	file, err := registry.Export(doc, name, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(opts.out, file.Name)
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
