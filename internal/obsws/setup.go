package obsws

import (
	"fmt"
	"log"
	"strings"

	"github.com/andreykaipov/goobs"
	"github.com/andreykaipov/goobs/api/requests/filters"
	"github.com/andreykaipov/goobs/api/requests/inputs"
	"github.com/samber/lo"
)

// DefaultFilterKind は obs-shaderfilter プラグインのフィルタ種別。
// シェーダの uniform がフィルタ設定として公開される。
const DefaultFilterKind = "shader_filter"

type SetupOptions struct {
	Addr       string
	Password   string
	Sources    []string
	FilterName string
	FilterKind string
	// Settings は新規作成するフィルタの初期設定。
	Settings map[string]any
}

// SetupFilters は各ソースにスロット用フィルタを作成する。既に同名フィルタがあればスキップ。
// 作成した数を返す。
func SetupFilters(opts SetupOptions) (int, error) {
	name := sanitizeName(opts.FilterName)
	kind := strings.TrimSpace(opts.FilterKind)
	if kind == "" {
		kind = DefaultFilterKind
	}
	if len(opts.Sources) == 0 {
		return 0, fmt.Errorf("対象ソースがありません")
	}

	client, err := openObs(NormalizeObsAddr(opts.Addr), opts.Password)
	if err != nil {
		return 0, fmt.Errorf("OBS への接続に失敗しました: %w", err)
	}
	defer client.Disconnect()

	count := 0
	for _, raw := range opts.Sources {
		source := strings.TrimSpace(raw)
		if source == "" {
			continue
		}
		existing, err := filterNames(client, source)
		if err != nil {
			log.Printf("[WARN] フィルタ一覧の取得に失敗 (%s): %v", source, err)
			continue
		}
		if lo.Contains(existing, name) {
			log.Printf("[INFO] 既存フィルタのためスキップ: %s/%s", source, name)
			continue
		}
		src := source
		_, err = client.Filters.CreateSourceFilter(&filters.CreateSourceFilterParams{
			SourceName:     &src,
			FilterName:     &name,
			FilterKind:     &kind,
			FilterSettings: opts.Settings,
		})
		if err != nil {
			log.Printf("[WARN] フィルタ作成失敗 (%s/%s): %v", source, name, err)
			continue
		}
		log.Printf("[INFO] 作成完了: %s/%s (%s)", source, name, kind)
		count++
	}

	if count == 0 {
		log.Println("[INFO] 作成されたフィルタはありません。")
	} else {
		log.Printf("[INFO] 合計 %d 件のフィルタを作成しました。", count)
	}
	return count, nil
}

// FoundFilter は OBS 上で見つかったフィルタ。
type FoundFilter struct {
	Source string
	Filter string
	Kind   string
}

// DiscoverFilters は全入力ソースのフィルタを列挙し、kind（空なら全種別）と
// 名前の部分一致 match（空なら全て）で絞り込む。
func DiscoverFilters(addr, password, kind, match string) ([]FoundFilter, error) {
	client, err := openObs(NormalizeObsAddr(addr), password)
	if err != nil {
		return nil, fmt.Errorf("OBS への接続に失敗しました: %w", err)
	}
	defer client.Disconnect()

	lst, err := client.Inputs.GetInputList(&inputs.GetInputListParams{})
	if err != nil {
		return nil, fmt.Errorf("入力一覧の取得に失敗しました: %w", err)
	}
	var found []FoundFilter
	for _, in := range lst.Inputs {
		source := in.InputName
		resp, err := client.Filters.GetSourceFilterList(&filters.GetSourceFilterListParams{SourceName: &source})
		if err != nil {
			log.Printf("[DEBUG] フィルタ一覧の取得に失敗 (%s): %v", source, err)
			continue
		}
		for _, f := range resp.Filters {
			found = append(found, FoundFilter{Source: source, Filter: f.FilterName, Kind: f.FilterKind})
		}
	}
	return selectFilters(found, kind, match), nil
}

func selectFilters(all []FoundFilter, kind, match string) []FoundFilter {
	kind = strings.TrimSpace(kind)
	match = strings.ToLower(strings.TrimSpace(match))
	return lo.Filter(all, func(f FoundFilter, _ int) bool {
		if kind != "" && f.Kind != kind {
			return false
		}
		return match == "" || strings.Contains(strings.ToLower(f.Filter), match)
	})
}

func filterNames(client *goobs.Client, source string) ([]string, error) {
	resp, err := client.Filters.GetSourceFilterList(&filters.GetSourceFilterListParams{SourceName: &source})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Filters))
	for _, f := range resp.Filters {
		names = append(names, f.FilterName)
	}
	return names, nil
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "vfxmidi"
	}
	const limit = 120
	if len([]rune(s)) > limit {
		return string([]rune(s)[:limit])
	}
	return s
}
