package task

import (
	"context"
	"errors"
	"fmt"
	"io"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	ErrUnboundedBatch = errors.New("batch runs need control.step.total > 0")
)

// RunReport 单次运行的结果
type RunReport struct {
	ID    string `yaml:"id"`
	Seed  uint64 `yaml:"seed"`
	Stats Stats  `yaml:"stats"`
	Error string `yaml:"error,omitempty"`
}

// BatchReport 批量运行的汇总
type BatchReport struct {
	Policy          string      `yaml:"policy"`
	Steps           int32       `yaml:"steps"`
	Runs            []RunReport `yaml:"runs"`
	MeanDespawned   float64     `yaml:"mean_despawned"`    // 平均通过车辆数
	MeanTransitTime float64     `yaml:"mean_transit_time"` // 各次运行平均通行时间的均值（秒）
}

// RunBatch 以不同随机数种子并行运行多次无界面仿真
// 功能：第i次运行使用种子spawn.seed+i，不限帧率、不输出渲染，运行结束后汇总统计
// 参数：c-原始配置，n-运行次数
// 返回：汇总报告；配置非法或未设置总步数时返回错误
// 说明：各次运行完全独立，单次运行失败记录在其报告中，不影响其他运行
func RunBatch(c config.Config, n int) (*BatchReport, error) {
	if n <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", n)
	}
	if c.Control.Step.Total <= 0 {
		return nil, ErrUnboundedBatch
	}
	c.Control.FPS = 0
	seeds := lo.Map(lo.Range(n), func(i int, _ int) uint64 {
		return c.Spawn.Seed + uint64(i)
	})
	// 提前校验，避免每个运行重复报同样的错误
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	runs := parallel.GoMap(seeds, func(seed uint64) RunReport {
		cfg := c
		cfg.Spawn.Seed = seed
		report := RunReport{ID: uuid.NewString(), Seed: seed}
		ctx, err := NewContext(cfg, NopSink{})
		if err != nil {
			report.Error = err.Error()
			return report
		}
		if err := ctx.Run(context.Background()); err != nil {
			report.Error = err.Error()
		}
		report.Stats = ctx.Stats()
		log.Debugf("run %s (seed %d) complete", report.ID, seed)
		return report
	})
	ok := lo.Filter(runs, func(r RunReport, _ int) bool { return r.Error == "" })
	report := &BatchReport{
		Policy: rc.C.Policy,
		Steps:  c.Control.Step.Total,
		Runs:   runs,
	}
	if len(ok) > 0 {
		report.MeanDespawned = float64(lo.SumBy(ok, func(r RunReport) int { return r.Stats.Despawned })) / float64(len(ok))
		report.MeanTransitTime = lo.SumBy(ok, func(r RunReport) float64 { return r.Stats.MeanTransitTime }) / float64(len(ok))
	}
	return report, nil
}

// WriteReport 以YAML格式输出报告
func WriteReport(w io.Writer, report *BatchReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
