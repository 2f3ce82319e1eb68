package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/note-overlay/internal/archive"
	"github.com/ivlev/note-overlay/internal/config"
	"github.com/ivlev/note-overlay/internal/effects"
	"github.com/ivlev/note-overlay/internal/engine"
	"github.com/ivlev/note-overlay/internal/logger"
	"github.com/ivlev/note-overlay/internal/pairing"
	"github.com/ivlev/note-overlay/internal/source"
	"github.com/ivlev/note-overlay/internal/system"
	"github.com/ivlev/note-overlay/internal/transport"
)

func main() {
	// .env не обязателен: переменные окружения имеют приоритет
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[!] Не удалось прочитать .env: %v", err)
	}
	logger.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	defaults := config.DefaultOptions()

	originalPtr := flag.String("original", "", "Оригинальное изображение (одна пара)")
	annotatedPtr := flag.String("annotated", "", "Изображение с пометками (одна пара)")
	dirPtr := flag.String("dir", "", "Папка с файлами для пакетной обработки по ключевым словам (annotated, marked, 标注)")
	originalsPtr := flag.String("originals", "", "Папка с оригиналами (пакет по порядку)")
	annotatedDirPtr := flag.String("annotated-dir", "", "Папка с аннотированными изображениями (пакет по порядку)")
	strategyPtr := flag.String("strategy", "", "Сопоставление пар: keyword или ordinal (по умолчанию выбирается по флагам)")
	outputPtr := flag.String("output", "", "Результат: PNG для одной пары, ZIP для пакета (по умолчанию "+archive.DefaultName+")")
	thresholdPtr := flag.Int("threshold", defaults.TextThreshold, "Порог яркости текста 0-255")
	expandPtr := flag.Int("expand", defaults.MaskExpand, "Расширение маски текста в пикселях")
	colorPtr := flag.String("color", defaults.BlockColor, "Цвет заливки #RGB или #RRGGBB")
	opacityPtr := flag.Float64("opacity", defaults.BlockOpacity, "Непрозрачность заливки 0-1")
	presetPtr := flag.String("preset", "", "Пресет: highlight-yellow, highlight-green, highlight-pink, highlight-blue или свой")
	presetsPtr := flag.String("presets", "", "YAML-файл с пользовательскими пресетами")
	savePresetPtr := flag.String("save-preset", "", "Сохранить текущие настройки как пресет с этим именем (нужен -presets)")
	kernelPtr := flag.String("kernel", "bilinear", "Ресайз: nearest, bilinear, catmullrom, lanczos")
	dilatorPtr := flag.String("dilator", "span", "Расширение маски: span или naive")
	workersPtr := flag.Int("workers", 1, "Параллельные пары (0 - по числу CPU с учетом памяти)")
	dpiPtr := flag.Int("dpi", source.DefaultDPI, "DPI для PDF")
	reportPtr := flag.String("report", "", "Сохранить отчет пакета в YAML")
	summaryPtr := flag.String("summary", "", "Показать сводку сохраненного отчета пакета и выйти")
	servePtr := flag.Bool("serve", false, "Запустить HTTP-сервер (настройки из окружения)")

	flag.Parse()

	if *summaryPtr != "" {
		if err := printSummary(*summaryPtr); err != nil {
			log.Fatalf("[-] Ошибка отчета: %v", err)
		}
		return
	}

	cfg := &config.Config{
		OriginalPath:  *originalPtr,
		AnnotatedPath: *annotatedPtr,
		FilesDir:      *dirPtr,
		OriginalsDir:  *originalsPtr,
		AnnotatedDir:  *annotatedDirPtr,
		Strategy:      *strategyPtr,
		OutputPath:    *outputPtr,
		ReportPath:    *reportPtr,
		PresetName:    *presetPtr,
		PresetsPath:   *presetsPtr,
		Kernel:        *kernelPtr,
		Dilator:       *dilatorPtr,
		Workers:       *workersPtr,
		DPI:           *dpiPtr,
		AutoOrient:    true,
		Serve:         *servePtr,
	}

	presets, err := loadPresets(cfg.PresetsPath)
	if err != nil {
		log.Fatalf("[-] Ошибка пресетов: %v", err)
	}

	// Пресет задает основу, явно указанные флаги его перекрывают
	opts := defaults
	if cfg.PresetName != "" {
		p, ok := config.FindPreset(presets, cfg.PresetName)
		if !ok {
			log.Fatalf("[-] Пресет не найден: %s", cfg.PresetName)
		}
		opts = p.Options
		fmt.Printf("[*] Пресет: %s\n", p.Name)
	}
	var ov config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			ov.TextThreshold = thresholdPtr
		case "expand":
			ov.MaskExpand = expandPtr
		case "color":
			ov.BlockColor = colorPtr
		case "opacity":
			ov.BlockOpacity = opacityPtr
		}
	})
	cfg.Options = opts.WithOverrides(ov)
	if err := cfg.Options.Validate(); err != nil {
		log.Fatalf("[-] Неверные параметры: %v", err)
	}

	if *savePresetPtr != "" {
		if err := savePreset(cfg.PresetsPath, *savePresetPtr, cfg.Options); err != nil {
			log.Fatalf("[-] Не удалось сохранить пресет: %v", err)
		}
		fmt.Printf("[+] Пресет сохранен: %s -> %s\n", *savePresetPtr, cfg.PresetsPath)
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case cfg.Serve:
		err = serve(ctx, eng, presets)
	case cfg.IsBatch():
		err = runBatch(ctx, eng, cfg)
	case cfg.OriginalPath != "" && cfg.AnnotatedPath != "":
		err = runSingle(ctx, eng, cfg)
	default:
		if *savePresetPtr != "" {
			return
		}
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

// loadPresets returns the built-in presets followed by the user's.
func loadPresets(path string) ([]config.Preset, error) {
	presets := config.DefaultPresets()
	if path == "" {
		return presets, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return presets, nil
	}
	user, err := config.LoadPresets(path)
	if err != nil {
		return nil, err
	}
	return append(presets, user...), nil
}

func savePreset(path, name string, opts config.Options) error {
	if path == "" {
		return errors.New("-save-preset requires -presets")
	}
	var existing []config.Preset
	if _, err := os.Stat(path); err == nil {
		if existing, err = config.LoadPresets(path); err != nil {
			return err
		}
	}
	updated := config.AddPreset(existing, name, opts)
	if len(updated) == len(existing) {
		return fmt.Errorf("не более %d пользовательских пресетов", config.MaxUserPresets)
	}
	return config.SavePresets(path, updated)
}

func runSingle(ctx context.Context, eng *engine.Engine, cfg *config.Config) error {
	original := source.File{Path: cfg.OriginalPath}
	annotated := source.File{Path: cfg.AnnotatedPath}

	fmt.Printf("[*] Оригинал: %s | Пометки: %s\n", original.Name(), annotated.Name())
	start := time.Now()

	res, err := eng.ProcessPair(ctx, original, annotated, cfg.Options)
	if err != nil {
		return err
	}

	out := cfg.OutputPath
	if out == "" {
		out = filepath.Join(filepath.Dir(cfg.OriginalPath), res.Name)
	}
	if err := os.WriteFile(out, res.Data, 0644); err != nil {
		return err
	}

	fmt.Printf("[+++] Успех! %dx%d, %s за %s. Результат: %s\n",
		res.Width, res.Height, system.FormatFileSize(int64(len(res.Data))),
		time.Since(start).Round(time.Millisecond), out)
	return nil
}

func runBatch(ctx context.Context, eng *engine.Engine, cfg *config.Config) error {
	in, strategy, err := batchInput(cfg)
	if err != nil {
		return err
	}

	matched, err := strategy.Match(in)
	if err != nil {
		return err
	}
	for _, f := range matched.Unpaired {
		fmt.Printf("[!] Без пары: %s\n", f.Name())
	}
	if matched.Mismatch > 0 {
		fmt.Printf("[!] Количество оригиналов и пометок различается на %d\n", matched.Mismatch)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(matched.Pairs) == 0 {
		// Пустой архив все равно пишется, как и в HTTP-режиме
		fmt.Println("[!] Не найдено ни одной пары")
	} else {
		workers = system.SuggestWorkers(workers, probePixels(matched.Pairs[0].Original))
	}

	out := cfg.OutputPath
	if out == "" {
		out = archive.DefaultName
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := archive.NewWriter(f)
	runner := &engine.Runner{Engine: eng, Archive: zw, Workers: workers}

	fmt.Println("--- [BATCH] ---")
	fmt.Printf("[*] Стратегия: %s | Пар: %d | Потоков: %d\n", strategy.Name(), len(matched.Pairs), workers)
	fmt.Printf("[*] Порог: %d | Расширение: %d px | Цвет: %s @ %.2f\n",
		cfg.Options.TextThreshold, cfg.Options.MaskExpand,
		effects.ParseColor(cfg.Options.BlockColor).Hex(), cfg.Options.BlockOpacity)
	fmt.Println("---------------")

	start := time.Now()
	report, runErr := runner.RunBatch(ctx, matched.Pairs, cfg.Options, func(ev engine.ProgressEvent) {
		if ev.Success {
			fmt.Printf("[>] Готово: %d/%d %s\n", ev.Index, ev.Total, ev.DisplayName)
		} else {
			fmt.Printf("[!] Ошибка: %d/%d %s: %s\n", ev.Index, ev.Total, ev.DisplayName, ev.Error)
		}
	})
	if report == nil {
		return runErr
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := engine.SaveReport(cfg.ReportPath, report); err != nil {
			fmt.Printf("[!] Не удалось записать отчет: %v\n", err)
		} else {
			fmt.Printf("[*] Отчет: %s\n", cfg.ReportPath)
		}
	}
	if runErr != nil {
		return runErr
	}

	size := int64(0)
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	fmt.Printf("[+++] Успех! Обработано %d из %d (ошибок: %d) за %s. Архив: %s (%d файлов, %s)\n",
		report.Succeeded, report.Total, report.Failed,
		time.Since(start).Round(time.Millisecond), out, len(zw.Entries()), system.FormatFileSize(size))
	return nil
}

// batchInput lists the input folders and picks a strategy: explicit
// -strategy wins, otherwise -dir means keyword and two folders mean ordinal.
func batchInput(cfg *config.Config) (pairing.Input, pairing.Strategy, error) {
	name := cfg.Strategy
	if name == "" {
		name = "keyword"
		if cfg.FilesDir == "" {
			name = "ordinal"
		}
	}
	strategy, err := pairing.NewStrategy(name)
	if err != nil {
		return pairing.Input{}, nil, err
	}

	var in pairing.Input
	if cfg.FilesDir != "" {
		if in.Files, err = source.ListDir(cfg.FilesDir); err != nil {
			return in, nil, err
		}
	}
	if cfg.OriginalsDir != "" {
		if in.Originals, err = source.ListDir(cfg.OriginalsDir); err != nil {
			return in, nil, err
		}
	}
	if cfg.AnnotatedDir != "" {
		if in.Annotated, err = source.ListDir(cfg.AnnotatedDir); err != nil {
			return in, nil, err
		}
	}
	return in, strategy, nil
}

// probePixels reads the header of one original to estimate page area.
// PDF pages and unreadable files yield 0, which disables the memory cap.
// printSummary re-reads a report saved with -report and lists its failures.
func printSummary(path string) error {
	report, err := engine.LoadReport(path)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Отчет: %s\n", path)
	for _, o := range report.Failures() {
		fmt.Printf("[!] Ошибка: %d/%d %s: %s\n", o.Index+1, report.Total, o.DisplayName, o.Error)
	}
	if skipped := report.Total - len(report.Outcomes); skipped > 0 {
		fmt.Printf("[!] Не обработано (прервано): %d\n", skipped)
	}
	fmt.Printf("[+++] Успешно %d из %d, ошибок: %d\n", report.Succeeded, report.Total, report.Failed)
	return nil
}

func probePixels(res source.Resource) int64 {
	rc, err := res.Open()
	if err != nil {
		return 0
	}
	defer rc.Close()
	ic, _, err := image.DecodeConfig(rc)
	if err != nil {
		return 0
	}
	return int64(ic.Width) * int64(ic.Height)
}

func serve(ctx context.Context, eng *engine.Engine, presets []config.Preset) error {
	srvCfg, err := config.LoadServerFromEnv()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    srvCfg.ServerAddress(),
		Handler: transport.NewHandler(eng, presets, srvCfg),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("[*] Сервер слушает %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		fmt.Println("[*] Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
