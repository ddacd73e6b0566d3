package main

import (
	"fmt"
	"log"
	"os"
)

// これらは ldflags で上書き可能:
// go build -tags midi_native -ldflags "-X main.version=1.2.3 -X main.commit=abcd123 -X main.date=2026-10-16T01:23:45Z"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runRun(os.Args[2:])
	case "devices", "ls-devices":
		runDevices(os.Args[2:])
	case "setup":
		runSetup(os.Args[2:])
	case "gen-config", "gen":
		runGenConfig(os.Args[2:])
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		if len(os.Args) > 2 {
			switch os.Args[2] {
			case "run":
				runUsage()
			case "devices":
				devicesUsage()
			case "setup":
				setupUsage()
			case "gen-config":
				genConfigUsage()
			default:
				usage()
			}
		} else {
			usage()
		}
	default:
		log.Printf("不明なサブコマンド: %s", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("vfxmidi - MIDI ノートと入力アクションで OBS のエフェクトフィルタを動かす")
	fmt.Println("")
	fmt.Println("使用方法:")
	fmt.Println("  vfxmidi <command> [options]")
	fmt.Println("")
	fmt.Println("コマンド:")
	fmt.Println("  run         MIDI 入力を待機し、フィルタのパラメータとイベントを駆動")
	fmt.Println("  devices     MIDI 入力デバイスの状況を表示（-watch で増減を監視）")
	fmt.Println("  setup       ソースにスロット用フィルタを作成")
	fmt.Println("  gen-config  OBS 上のフィルタから設定ファイルの雛形を生成")
	fmt.Println("  version     バージョン情報を表示")
	fmt.Println("")
	fmt.Println("ヘルプ:")
	fmt.Println("  vfxmidi help run       run の詳細ヘルプ")
	fmt.Println("")
	fmt.Println("例:")
	fmt.Println("  vfxmidi setup -addr 127.0.0.1:4455 -password ****** -sources 'Blob 1,Blob 2,Blob 3'")
	fmt.Println("  vfxmidi gen-config -addr 127.0.0.1:4455 -format yaml > vfxmidi.yaml")
	fmt.Println("  vfxmidi run -config vfxmidi.yaml")
	fmt.Println("  vfxmidi run -target 'Blob 1' -target 'Blob 2' -source range -range 48-72 -channel 1")
}

func printVersion() {
	fmt.Printf("vfxmidi %s (commit %s, built %s)\n", version, commit, date)
}
