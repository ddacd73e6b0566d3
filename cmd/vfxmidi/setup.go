package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"vfxmidi/internal/config"
	"vfxmidi/internal/effect"
	"vfxmidi/internal/obsws"
)

func runSetup(args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	addr := fs.String("addr", "", "OBS WebSocket のアドレス (host:port)")
	password := fs.String("password", "", "OBS WebSocket のパスワード")
	sources := fs.String("sources", "", "フィルタを作るソース名（カンマ区切り）")
	filter := fs.String("filter", config.DefaultFilterName, "作成するフィルタ名")
	kind := fs.String("kind", obsws.DefaultFilterKind, "フィルタ種別")
	configPath := fs.String("config", "", "設定ファイル。指定するとアニメーターのターゲットすべてに作成")
	fs.Usage = setupUsage
	_ = fs.Parse(args)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[ERROR] 設定の読み込みに失敗しました: %v", err)
		}
		cfg = c
	}
	if *addr != "" {
		cfg.OBS.Addr = *addr
	}
	if *password != "" {
		cfg.OBS.Password = *password
	}

	groups := setupGroups(cfg, splitList(*sources), *filter)
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "-sources か -config を指定してください。")
		setupUsage()
		os.Exit(2)
	}

	total := 0
	for name, srcs := range groups {
		n, err := obsws.SetupFilters(obsws.SetupOptions{
			Addr:       cfg.OBS.Addr,
			Password:   cfg.OBS.Password,
			Sources:    srcs,
			FilterName: name,
			FilterKind: *kind,
			Settings:   effect.DefaultParams(),
		})
		if err != nil {
			log.Fatalf("[ERROR] %v", err)
		}
		total += n
	}
	fmt.Printf("作成: %d\n", total)
}

// setupGroups はフィルタ名ごとに対象ソースをまとめる。
func setupGroups(cfg *config.Config, sources []string, filter string) map[string][]string {
	groups := map[string][]string{}
	if len(sources) > 0 {
		name := config.TargetRef{Filter: filter}.FilterName()
		groups[name] = lo.Uniq(sources)
	}
	for _, a := range cfg.Animators {
		for _, t := range a.Targets {
			name := t.FilterName()
			if !lo.Contains(groups[name], t.Source) {
				groups[name] = append(groups[name], t.Source)
			}
		}
	}
	return groups
}

func runGenConfig(args []string) {
	fs := flag.NewFlagSet("gen-config", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:4455", "OBS WebSocket のアドレス (host:port)")
	password := fs.String("password", "", "OBS WebSocket のパスワード")
	kind := fs.String("kind", obsws.DefaultFilterKind, "対象のフィルタ種別（空なら全種別）")
	match := fs.String("match", config.DefaultFilterName, "フィルタ名の部分一致（空なら全て）")
	format := fs.String("format", "json", "出力形式: json|yaml")
	fps := fs.Int("fps", config.DefaultFPS, "出力する fps")
	fs.Usage = genConfigUsage
	_ = fs.Parse(args)

	found, err := obsws.DiscoverFilters(*addr, *password, *kind, *match)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if len(found) == 0 {
		log.Println("[WARN] 該当するフィルタが見つかりません。先に setup を実行してください。")
	}
	cfg := generateConfig(found, *addr, *password, *fps)

	out, err := encodeConfig(cfg, *format)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	os.Stdout.Write(out)
}

// generateConfig は見つかったフィルタをすべてスロットにした設定を作る。
func generateConfig(found []obsws.FoundFilter, addr, password string, fps int) *config.Config {
	cfg := config.Default()
	cfg.OBS.Addr = obsws.NormalizeObsAddr(addr)
	cfg.OBS.Password = password
	cfg.FPS = fps
	if len(found) == 0 {
		return cfg
	}
	cfg.Animators = []config.AnimatorConfig{{
		Name:   "slots",
		Mode:   config.ModeSlots,
		Source: "all",
		Targets: lo.Map(found, func(f obsws.FoundFilter, _ int) config.TargetRef {
			return config.TargetRef{Source: f.Source, Filter: f.Filter}
		}),
	}}
	return cfg
}

func encodeConfig(cfg *config.Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("-format は json|yaml: %q", format)
	}
}

func setupUsage() {
	fmt.Fprintln(os.Stderr, "Usage: vfxmidi setup [-addr host:port] [-password pass] (-sources A,B | -config file) [-filter name] [-kind shader_filter]")
	fmt.Fprintln(os.Stderr, "\n説明: ソースにスロット用フィルタ（既定パラメータ付き）を作成します。既存の同名フィルタはスキップします。")
}

func genConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage: vfxmidi gen-config [-addr host:port] [-password pass] [-kind shader_filter] [-match vfxmidi] [-format json|yaml] > config.json")
	fmt.Fprintln(os.Stderr, "\n説明: OBS 上のフィルタを列挙し、それらをスロットにした設定を標準出力に書き出します。")
}
