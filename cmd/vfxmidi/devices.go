package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vfxmidi/internal/midi"
)

func runDevices(args []string) {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	watch := fs.Bool("watch", false, "デバイスの接続/切断を Ctrl-C まで表示し続ける")
	match := fs.String("device", "", "表示するデバイス名（部分一致）")
	poll := fs.Duration("poll", time.Second, "-watch 時の確認間隔")
	fs.Usage = devicesUsage
	_ = fs.Parse(args)

	w := midi.NewWatcher(midi.ListInputs, *poll)
	w.Match = *match
	if _, err := w.Scan(); err != nil {
		log.Printf("[ERROR] MIDI デバイス一覧の取得に失敗: %v", err)
		log.Println("ネイティブMIDI機能はビルドタグ 'midi_native' が必要です。")
		os.Exit(1)
	}
	fmt.Println(midi.DescribeDevices(w.Known()))
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	changes := make(chan midi.DeviceChange, 16)
	go w.Run(ctx, changes)
	for c := range changes {
		fmt.Printf("%s: %s\n", c.Kind, c.Name)
	}
}

func devicesUsage() {
	fmt.Fprintln(os.Stderr, "Usage: vfxmidi devices [-watch] [-device name] [-poll 1s]")
	fmt.Fprintln(os.Stderr, "\n説明: 接続されている MIDI 入力デバイスを表示します（'Through' ポートは除外）。")
	fmt.Fprintln(os.Stderr, "      -watch で接続/切断を Ctrl-C まで表示し続けます。")
}
