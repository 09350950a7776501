package instrument

import (
	"context"
	"os"

	"github.com/novafacing/catapult/internal/catlog"
	"github.com/novafacing/catapult/internal/plugin"
	"github.com/novafacing/catapult/internal/pluginstate"
	"github.com/novafacing/catapult/internal/producer"
	"github.com/novafacing/catapult/internal/qemuabi"
)

// global holds the single Instrumenter constructed by the setup descriptor
// below; the host-callback descriptors close over it. This mirrors
// jaivana's lazy_static Mutex<Context> global translated into Go's
// init()-registration idiom (SPEC_FULL §4.3).
var global *Instrumenter

func init() {
	qemuabi.OnInstalled = SetHost

	plugin.RegisterSetup(setup)

	plugin.RegisterHostCallback(plugin.HostCallback{
		Tag: plugin.HookTBTranslate,
		Fn:  plugin.TBTranslateFunc(onTBTranslate),
	})
	plugin.RegisterHostCallback(plugin.HostCallback{
		Tag: plugin.HookSyscall,
		Fn:  plugin.SyscallFunc(onSyscall),
	})
	plugin.RegisterHostCallback(plugin.HostCallback{
		Tag: plugin.HookSyscallRet,
		Fn:  plugin.SyscallRetFunc(onSyscallRet),
	})
	plugin.RegisterHostCallback(plugin.HostCallback{
		Tag: plugin.HookAtExit,
		Fn:  plugin.AtExitFunc(onAtExit),
	})
}

func setup(info *plugin.Info, args *plugin.Args) {
	catlog.Init(args.Bool("debug", false))

	opts := pluginstate.Options{
		LogPC:       args.BoolAny(false, "trace_pc", "log_pc"),
		LogOpcode:   args.BoolAny(false, "trace_instrs", "log_opcode"),
		LogReads:    args.BoolAny(false, "trace_reads", "log_mem"),
		LogWrites:   args.BoolAny(false, "trace_writes", "log_mem"),
		LogSyscalls: args.BoolAny(false, "trace_syscalls", "log_syscall"),
		LogBranches: args.BoolAny(false, "trace_branches", "log_branch"),
	}
	state := pluginstate.New(opts, 1024)

	sockPath := args.StringAny("", "sock_path", "socket_path")
	batchSize := int(args.Int("batch_size", 64))

	w := producer.WireFixed
	if args.String("wire", "fixed") == "tlv" {
		w = producer.WireTLV
	}

	prod, err := producer.Setup(context.Background(), sockPath, batchSize, w)
	if err != nil {
		if catlog.L != nil {
			catlog.L.Sugar().Errorf("instrument: producer setup failed: %v", err)
		}
		os.Exit(1)
	}

	global = New(state, prod)
}

func onTBTranslate(id uint32, tb *plugin.TranslationBlock) {
	global.OnTBTranslate(currentHost, tb)
}

func onSyscall(id uint32, vcpuIdx uint32, num int64, args [8]uint64) {
	global.OnSyscall(id, vcpuIdx, num, args)
}

func onSyscallRet(id uint32, vcpuIdx uint32, num int64, rv int64) {
	global.OnSyscallRet(id, vcpuIdx, rv)
}

func onAtExit(id uint32) {
	if global == nil {
		return
	}
	global.Producer.Shutdown()
	if catlog.L != nil {
		catlog.L.Sugar().Infof("instrument: shutdown complete, dropped=%d", global.Producer.Dropped())
	}
}

// currentHost is set via qemuabi.OnInstalled right after install succeeds;
// onTBTranslate needs it to reach RegisterInsnExec/RegisterMemAccess.
var currentHost plugin.Host

// SetHost is called once by the host ABI adapter right after Install
// succeeds, so later dynamic registration calls have a Host to bind
// against.
func SetHost(h plugin.Host) { currentHost = h }
