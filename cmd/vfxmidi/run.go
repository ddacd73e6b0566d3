package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"

	"vfxmidi/internal/config"
	"vfxmidi/internal/effect"
	"vfxmidi/internal/engine"
	"vfxmidi/internal/logging"
	"vfxmidi/internal/midi"
	"vfxmidi/internal/obsws"
)

// runFlags は run のフラグ値。設定ファイルより優先される。
type runFlags struct {
	addr      string
	password  string
	device    string
	fps       int
	poll      string
	timeout   string
	targets   multiFlag
	filter    string
	mode      string
	source    string
	notes     string
	noteRange string
	channel   int
	intensity float64
}

func runRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	var o runFlags
	configPath := fs.String("config", "", "設定ファイル（.json/.yaml）。未指定時は既定の場所を探す")
	fs.StringVar(&o.addr, "addr", "", "OBS WebSocket のアドレス (host:port)")
	fs.StringVar(&o.password, "password", "", "OBS WebSocket のパスワード")
	fs.StringVar(&o.device, "device", "", "購読する MIDI 入力デバイス名（部分一致。未指定は全て）")
	fs.IntVar(&o.fps, "fps", 0, "パラメータ更新のフレームレート")
	fs.StringVar(&o.poll, "poll", "", "デバイス増減の確認間隔 (例: 1s)")
	fs.StringVar(&o.timeout, "timeout", "", "OBS リクエストのタイムアウト (例: 2s)")
	fs.Var(&o.targets, "target", "スロットにするソース名（複数可）。指定するとフラグからアニメーターを1つ追加")
	fs.StringVar(&o.filter, "filter", config.DefaultFilterName, "-target のフィルタ名")
	fs.StringVar(&o.mode, "mode", config.ModeSlots, "-target のモード: slots|gate")
	fs.StringVar(&o.source, "source", "all", "-target のノート選択: all|notes|range")
	fs.StringVar(&o.notes, "notes", "", "source=notes のノート番号（カンマ区切り）")
	fs.StringVar(&o.noteRange, "range", "", "source=range の範囲 (例: 48-72)")
	fs.IntVar(&o.channel, "channel", 0, "-target の MIDI チャネル (1-16、0 は全て)")
	fs.Float64Var(&o.intensity, "intensity", 0, "Intensity の追従速度（0 で無効）")
	dryRun := fs.Bool("dry-run", false, "OBS に接続せず、変更をログに出すだけ")
	debug := fs.Bool("debug", false, "デバッグログを有効化（-log-level debug と同じ）")
	logLevel := fs.String("log-level", "info", "ログレベル: debug|info|warn|error")

	fs.Usage = runUsage
	_ = fs.Parse(args)

	if *debug {
		*logLevel = "debug"
	}
	if err := logging.Setup(os.Stderr, *logLevel); err != nil {
		log.Fatalf("-log-level: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("[ERROR] 設定の読み込みに失敗しました: %v", err)
	}
	setFlags := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if err := applyRunFlags(cfg, o, setFlags); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if len(cfg.Animators) == 0 && len(cfg.Binders) == 0 {
		log.Println("[ERROR] アニメーターもバインダーもありません。-config か -target を指定してください。")
		os.Exit(2)
	}

	// MIDI ドライバの確認（ビルドタグ未指定の通常ビルドではスタブがエラーを返す）
	if _, err := midi.ListInputs(); err != nil {
		log.Printf("[ERROR] MIDI デバイス一覧の取得に失敗: %v", err)
		log.Println("ネイティブMIDI機能はビルドタグ 'midi_native' が必要です。")
		os.Exit(1)
	}

	timeout, _ := config.ParseDuration(cfg.OBS.Timeout, 2*time.Second)
	poll, _ := config.ParseDuration(cfg.MIDI.PollInterval, time.Second)

	var factory engine.TargetFactory
	if *dryRun {
		factory = dryRunFactory(cfg)
		log.Println("[INFO] dry-run: OBS には接続しません")
	} else {
		pool := obsws.NewPool(cfg.OBS.Password)
		defer pool.Close()
		factory = func(ref config.TargetRef) (effect.Target, error) {
			t, err := obsws.OpenFilterTarget(pool, cfg.OBS.Addr, ref.Source, ref.Filter, timeout)
			if err != nil {
				return nil, err
			}
			log.Printf("[INFO] ターゲット: %s (パラメータ %d 個)", t.Name(), t.Params())
			return t, nil
		}
	}

	eng, err := engine.Build(cfg, factory)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	eng.Status = midi.NewStatusReporter(500 * time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := midi.NewHub(midi.OpenInput, 256)
	defer hub.Close()
	watcher := midi.NewWatcher(midi.ListInputs, poll)
	watcher.Match = cfg.MIDI.Device
	eng.Source = watcher
	devices := make(chan midi.DeviceChange, 16)
	go watcher.Run(ctx, devices)

	log.Printf("[INFO] 開始: fps=%d animators=%d device=%q", eng.FPS(), len(eng.Animators()), cfg.MIDI.Device)
	eng.Status.Report(nil)
	eng.Run(ctx, hub.Events(), devices, hub)
	log.Println("[INFO] 停止しました")
}

// loadConfig は path（空なら既定の場所）の設定を読む。既定の場所に無ければ Default。
func loadConfig(path string) (*config.Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return config.Default(), nil
		}
		return nil, err
	}
	log.Printf("[INFO] 設定ファイル: %s", path)
	return cfg, nil
}

// applyRunFlags は明示されたフラグで cfg を上書きし、-target があればアニメーターを追加する。
func applyRunFlags(cfg *config.Config, o runFlags, set map[string]bool) error {
	if set["addr"] {
		cfg.OBS.Addr = o.addr
	}
	if set["password"] {
		cfg.OBS.Password = o.password
	}
	if set["timeout"] {
		cfg.OBS.Timeout = o.timeout
	}
	if set["device"] {
		cfg.MIDI.Device = o.device
	}
	if set["poll"] {
		cfg.MIDI.PollInterval = o.poll
	}
	if set["fps"] {
		cfg.FPS = o.fps
	}
	if len(o.targets) == 0 {
		return nil
	}

	a := config.AnimatorConfig{
		Name:           "cli",
		Mode:           o.mode,
		Channel:        o.channel,
		Source:         o.source,
		IntensitySpeed: float32(o.intensity),
	}
	if strings.TrimSpace(o.notes) != "" {
		notes, err := parseNotes(o.notes)
		if err != nil {
			return fmt.Errorf("-notes: %w", err)
		}
		a.Notes = notes
	}
	if strings.TrimSpace(o.noteRange) != "" {
		lowest, highest, err := parseRange(o.noteRange)
		if err != nil {
			return fmt.Errorf("-range: %w", err)
		}
		a.Lowest, a.Highest = lowest, &highest
	}
	for _, t := range o.targets {
		a.Targets = append(a.Targets, config.TargetRef{Source: t, Filter: o.filter})
	}
	cfg.Animators = append(cfg.Animators, a)
	return cfg.Validate()
}

// dryRunFactory は既定のスロット用パラメータと、バインダーが使うプロパティを持つ
// Recorder を返す。
func dryRunFactory(cfg *config.Config) engine.TargetFactory {
	props := lo.Uniq(lo.FilterMap(cfg.Binders, func(b config.BinderConfig, _ int) (string, bool) {
		return b.Property, b.Property != ""
	}))
	return func(ref config.TargetRef) (effect.Target, error) {
		floats := append([]string{effect.ParamVelocity, effect.ParamNoteOnTime, effect.ParamNoteOffTime, effect.ParamIntensity}, props...)
		r := effect.NewRecorder(ref.Source+"/"+ref.Filter, floats, []string{effect.ParamNoteNumber})
		r.Verbose = true
		return r, nil
	}
}

// parseNotes は "36,38,42" を重複なしのノート番号列にする。
func parseNotes(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 127 {
			return nil, fmt.Errorf("ノート番号は 0..127: %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("ノート番号がありません")
	}
	return lo.Uniq(out), nil
}

// parseRange は "48-72" を解析する。
func parseRange(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("範囲は low-high 形式: %q", s)
	}
	lowest, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	highest, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || lowest < 0 || highest > 127 || lowest > highest {
		return 0, 0, fmt.Errorf("範囲が不正です: %q", s)
	}
	return lowest, highest, nil
}

// splitList はカンマ区切りを空要素なしで分割する。
func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

// multiFlag は同名フラグの複数指定を受け取るためのヘルパ。
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(s string) error { *m = append(*m, s); return nil }

func runUsage() {
	fmt.Fprintln(os.Stderr, "Usage: vfxmidi run [options]")
	fmt.Fprintln(os.Stderr, "\n説明: MIDI 入力を監視し、ノートごとにフィルタ（スロット）を割り当てて")
	fmt.Fprintln(os.Stderr, "      Velocity/NoteNumber/NoteOnTime/NoteOffTime を書き込み、OnNoteOn/OnNoteOff を配信します。")
	fmt.Fprintln(os.Stderr, "\n主なオプション:")
	fmt.Fprintln(os.Stderr, "  -config     設定ファイル（.json/.yaml）")
	fmt.Fprintln(os.Stderr, "  -addr       OBS のアドレス (host:port)")
	fmt.Fprintln(os.Stderr, "  -password   パスワード")
	fmt.Fprintln(os.Stderr, "  -device     購読するデバイス名（部分一致）")
	fmt.Fprintln(os.Stderr, "  -fps        更新フレームレート (既定 30)")
	fmt.Fprintln(os.Stderr, "  -target     スロットにするソース名（複数可）")
	fmt.Fprintln(os.Stderr, "  -mode       slots|gate")
	fmt.Fprintln(os.Stderr, "  -source     all|notes|range と -notes / -range / -channel")
	fmt.Fprintln(os.Stderr, "  -intensity  Intensity の追従速度（0 で無効）")
	fmt.Fprintln(os.Stderr, "  -dry-run    OBS に接続せずログ出力のみ")
	fmt.Fprintln(os.Stderr, "  -log-level  debug|info|warn|error（-debug は debug と同じ）")
	fmt.Fprintln(os.Stderr, "\n注: ネイティブMIDI入力はビルドタグ 'midi_native' が必要です。")
}
