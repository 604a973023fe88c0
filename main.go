package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

var (
	// 本程序监听的RPC地址，设置为空则不提供时钟查询服务
	listenAddr = flag.String("listen", "", "clock service listening address (empty means disabled), e.g. :51102")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path (empty means defaults)")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 从标准输入读取手动命令
	stdinInput = flag.Bool("stdin", false, "read commands from stdin (n/s/e/w to spawn, r random, p pause, q quit)")
	// 批量无界面运行次数，大于0时忽略渲染与手动输入
	batch = flag.Int("batch", 0, "number of headless runs with consecutive seeds (0 means interactive run)")
	// 批量运行报告路径，为空则输出到标准输出
	reportPath = flag.String("report", "", "batch report output path (empty means stdout)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "intersection")
)

// loadConfig 读取配置，未指定时全部使用默认值
func loadConfig() config.Config {
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Info("no config specified, use defaults")
		return config.Default()
	}
	c, err := config.Parse(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	return c
}

func runBatch(c config.Config) {
	report, err := task.RunBatch(c, *batch)
	if err != nil {
		log.Panicf("batch run err: %v", err)
	}
	out := os.Stdout
	if *reportPath != "" {
		out, err = os.Create(*reportPath)
		if err != nil {
			log.Panicf("create report err: %v", err)
		}
		defer out.Close()
	}
	if err := task.WriteReport(out, report); err != nil {
		log.Panicf("write report err: %v", err)
	}
	log.Infof("batch complete: %d runs, mean despawned %.1f, mean transit %.2fs",
		len(report.Runs), report.MeanDespawned, report.MeanTransitTime)
}

// runInteractive 实时运行一次仿真，直到到达总步数、收到退出命令或信号
// 说明：返回前关闭时钟查询服务并停止信号监听
func runInteractive(c config.Config) error {
	t, err := task.NewContext(c, task.LogSink{Interval: c.Output.RenderInterval})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 时钟查询服务
	if *listenAddr != "" {
		mux := http.NewServeMux()
		t.Clock().Register(mux)
		server := &http.Server{Addr: *listenAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Panicf("failed to serve: %v", err)
			}
		}()
		defer server.Close()
		log.Infof("clock service listening on %s", *listenAddr)
	}

	// 手动输入协程
	if *stdinInput {
		go func() {
			if err := task.LineInput(os.Stdin, t); err != nil {
				if !errors.Is(err, task.ErrQuit) {
					log.Errorf("stdin err: %v", err)
				}
				cancel()
			}
		}()
	}

	return t.Run(runCtx)
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	c := loadConfig()
	log.Infof("%+v", c)

	if *batch > 0 {
		runBatch(c)
		return
	}

	if err := runInteractive(c); err != nil {
		log.Errorf("run err: %v", err)
		os.Exit(1)
	}
}
