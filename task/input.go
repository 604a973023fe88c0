package task

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

var (
	ErrQuit = errors.New("quit requested")
)

type commandKind int

const (
	commandSpawn commandKind = iota
	commandSpawnRandom
	commandTogglePause
)

// command 外部输入命令，在下一个tick开始时按到达顺序执行
type command struct {
	kind     commandKind
	approach entity.Approach
}

// Input 外部输入接口
// 说明：命令没有返回值，生成请求被拒绝时也不会通知调用方
type Input interface {
	RequestSpawn(a entity.Approach)
	RequestSpawnRandom()
	TogglePause()
}

// RequestSpawn 请求在进口道a生成车辆，可在任意协程调用
func (ctx *Context) RequestSpawn(a entity.Approach) {
	ctx.commands <- command{kind: commandSpawn, approach: a}
}

// RequestSpawnRandom 请求在随机进口道生成车辆，可在任意协程调用
func (ctx *Context) RequestSpawnRandom() {
	ctx.commands <- command{kind: commandSpawnRandom}
}

// TogglePause 请求切换暂停状态，可在任意协程调用
func (ctx *Context) TogglePause() {
	ctx.commands <- command{kind: commandTogglePause}
}

// drainCommands 按到达顺序执行所有待处理命令
func (ctx *Context) drainCommands() {
	for {
		select {
		case cmd := <-ctx.commands:
			ctx.execute(cmd)
		default:
			return
		}
	}
}

func (ctx *Context) execute(cmd command) {
	switch cmd.kind {
	case commandSpawn:
		ctx.vehicleManager.Spawn(cmd.approach)
	case commandSpawnRandom:
		ctx.vehicleManager.SpawnRandom()
	case commandTogglePause:
		ctx.paused = !ctx.paused
		log.Infof("step %d: paused=%v", ctx.clock.InternalStep, ctx.paused)
	}
}

// LineInput 从r逐行读取命令并提交给in
// 功能：文本形式的手动输入，每行一个命令
// 参数：r-输入流，in-命令接收方
// 返回：读到EOF时返回nil，读到退出命令时返回ErrQuit
// 说明：命令格式：进口道名称或方向键别名（n/s/e/w、north/...、up/down/left/right）生成车辆，
// r随机生成，p切换暂停，q退出；空行忽略，无法识别的命令记录警告后跳过
func LineInput(r io.Reader, in Input) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
		case "r", "random":
			in.RequestSpawnRandom()
		case "p", "pause":
			in.TogglePause()
		case "q", "quit", "exit":
			return ErrQuit
		default:
			a, err := entity.ParseApproach(line)
			if err != nil {
				log.Warnf("ignore input %q: %v", line, err)
				continue
			}
			in.RequestSpawn(a)
		}
	}
	return scanner.Err()
}

// Demand 自动随机生成请求源
// 功能：每个tick以rate*dt的概率产生一次随机生成请求
// 说明：使用独立的随机数引擎，不影响生成器的路线序列。请求由tick协程在执行完外部命令后直接执行，不经过命令队列
type Demand struct {
	rate      float64 // 请求频率（次/秒）
	generator *randengine.Engine
}

// NewDemand 创建自动生成请求源
func NewDemand(rate float64, seed uint64) *Demand {
	return &Demand{
		rate:      rate,
		generator: randengine.New(seed),
	}
}

// Step 推进dt秒
// 返回：本步是否产生一次随机生成请求
func (d *Demand) Step(dt float64) bool {
	return d.generator.PTrue(d.rate * dt)
}
