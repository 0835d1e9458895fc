package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"studio-go/internal/models"
	"studio-go/internal/planner"

	"github.com/spf13/cobra"
)

type eventsOptions struct {
	in       string
	subjects []string
	levels   []string
	timezone string
}

func newEventsCmd() *cobra.Command {
	opts := &eventsOptions{}
	cmd := &cobra.Command{
		Use:     "events",
		Short:   "列出单元计划中的课时事件",
		Example: "  studioctl events --in unidad.json --subject Matemáticas --level 5°",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "单元计划JSON文件，可以是单个单元或数组")
	cmd.Flags().StringSliceVar(&opts.subjects, "subject", nil, "按学科过滤")
	cmd.Flags().StringSliceVar(&opts.levels, "level", nil, "按年级过滤")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "时区，默认本地")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runEvents(cmd *cobra.Command, opts *eventsOptions) error {
	raw, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("读取输入失败: %w", err)
	}
	units, err := decodeUnits(raw)
	if err != nil {
		return err
	}

	loc := time.Local
	if opts.timezone != "" {
		if loc, err = time.LoadLocation(opts.timezone); err != nil {
			return fmt.Errorf("无效的时区: %w", err)
		}
	}

	var all []planner.Event
	for i := range units {
		if units[i].ID == "" {
			units[i].ID = fmt.Sprintf("unidad%d", i+1)
		}
		events, errs := planner.UnitEvents(&units[i], loc)
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), "跳过:", e)
		}
		all = append(all, events...)
	}

	groups := planner.GroupByDate(planner.FilterEvents(all, opts.subjects, opts.levels))
	days := make([]string, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Strings(days)

	out := cmd.OutOrStdout()
	for _, day := range days {
		for _, ev := range groups[day] {
			fmt.Fprintf(out, "%s\t%s-%s\t%s\t%s\t%s\n",
				day,
				ev.Start.Format("15:04"),
				ev.End.Format("15:04"),
				ev.Asignatura,
				ev.Nivel,
				ev.Title,
			)
		}
	}
	return nil
}

// decodeUnits 接受单个单元或单元数组
func decodeUnits(raw []byte) ([]models.Unit, error) {
	var units []models.Unit
	if err := json.Unmarshal(raw, &units); err == nil {
		return units, nil
	}
	var unit models.Unit
	if err := json.Unmarshal(raw, &unit); err != nil {
		return nil, fmt.Errorf("解析单元计划失败: %w", err)
	}
	return []models.Unit{unit}, nil
}
