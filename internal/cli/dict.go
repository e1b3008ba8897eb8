package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nerdneilsfield/go-dict-translator/internal/config"
	"github.com/nerdneilsfield/go-dict-translator/internal/document"
	"github.com/nerdneilsfield/go-dict-translator/internal/logger"
	"github.com/nerdneilsfield/go-dict-translator/pkg/dictionary"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// dict 命令的标志
	useOverrideTier bool
	discoverLimit   int
)

// NewDictCommand 创建 dict 命令
func NewDictCommand() *cobra.Command {
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the term dictionary",
		Long: `Manage the two-tier term dictionary used to pin translations.

The permanent tier holds long-lived terms, the override tier wins on
conflicts and is meant for per-project corrections.

Examples:
  # List all entries
  dict-translator dict list

  # Pin a translation in the permanent tier
  dict-translator dict add "東京" "北京"

  # Pin a correction in the override tier
  dict-translator dict add --override "主人公" "主角"

  # Import a predefined term pack
  dict-translator dict import terms.toml

  # Scan a document for term candidates
  dict-translator dict discover novel.txt`,
	}

	addCmd := &cobra.Command{
		Use:   "add term translation",
		Short: "Add a term to the dictionary",
		Args:  cobra.ExactArgs(2),
		RunE:  runDictAdd,
	}
	addCmd.Flags().BoolVar(&useOverrideTier, "override", false, "写入覆盖层而不是永久层")

	removeCmd := &cobra.Command{
		Use:   "remove term",
		Short: "Remove a term from the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictRemove,
	}
	removeCmd.Flags().BoolVar(&useOverrideTier, "override", false, "从覆盖层删除而不是永久层")

	importCmd := &cobra.Command{
		Use:   "import file.toml",
		Short: "Import a predefined term pack",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictImport,
	}
	importCmd.Flags().BoolVar(&useOverrideTier, "override", false, "导入覆盖层而不是永久层")

	discoverCmd := &cobra.Command{
		Use:   "discover file",
		Short: "Scan a document for term candidates",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictDiscover,
	}
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 30, "最多显示的候选术语数")

	dictCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List dictionary entries",
			Args:  cobra.NoArgs,
			RunE:  runDictList,
		},
		addCmd,
		removeCmd,
		importCmd,
		discoverCmd,
	)

	return dictCmd
}

// openStore 按配置打开词典，命令行指定的路径优先
func openStore(cmd *cobra.Command, log *zap.Logger) *dictionary.Store {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Warn("加载配置失败，使用默认配置", zap.Error(err))
		cfg = config.NewDefaultConfig()
	}
	if cmd.Flags().Changed("permanent-dict") {
		cfg.PermanentDict = permanentDict
	}
	if cmd.Flags().Changed("override-dict") {
		cfg.OverrideDict = overrideDict
	}
	return dictionary.NewStore(cfg.PermanentDict, cfg.OverrideDict, log)
}

func addTier() dictionary.Tier {
	if useOverrideTier {
		return dictionary.TierOverride
	}
	return dictionary.TierPermanent
}

func tierName(tier dictionary.Tier) string {
	if tier == dictionary.TierOverride {
		return "override"
	}
	return "permanent"
}

// runDictList 列出两层词典的全部词条
func runDictList(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	store := openStore(cmd, log)
	out := cmd.OutOrStdout()

	permanent := store.Entries(dictionary.TierPermanent)
	override := store.Entries(dictionary.TierOverride)
	if len(permanent) == 0 && len(override) == 0 {
		fmt.Fprintln(out, "dictionary is empty")
		return nil
	}

	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintf(out, "📖 Dictionary (permanent: %d, override: %d)\n", len(permanent), len(override))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Term", "Translation", "Tier"})
	for _, e := range permanent {
		tbl.AppendRow(table.Row{e.Term, e.Translation, "permanent"})
	}
	for _, e := range override {
		tbl.AppendRow(table.Row{e.Term, e.Translation, "override"})
	}
	tbl.Render()

	return nil
}

// runDictAdd 向词典添加词条并落盘
func runDictAdd(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	store := openStore(cmd, log)
	tier := addTier()

	if err := store.Add(args[0], args[1], tier); err != nil {
		return fmt.Errorf("add term: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ added %q -> %q (%s)\n", args[0], args[1], tierName(tier))
	return nil
}

// runDictRemove 从词典删除词条并落盘
func runDictRemove(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	store := openStore(cmd, log)
	tier := addTier()

	if err := store.Remove(args[0], tier); err != nil {
		return fmt.Errorf("remove term: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  removed %q (%s)\n", args[0], tierName(tier))
	return nil
}

// runDictImport 导入预置术语包并落盘
func runDictImport(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	pack, err := dictionary.LoadPredefined(args[0])
	if err != nil {
		return fmt.Errorf("load term pack: %w", err)
	}

	store := openStore(cmd, log)
	tier := addTier()

	imported, err := store.ImportPredefined(pack, tier)
	if err != nil {
		return fmt.Errorf("import term pack: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d terms from %s (%s, %s -> %s)\n",
		imported, args[0], tierName(tier), pack.SourceLang, pack.TargetLang)
	return nil
}

// runDictDiscover 扫描文档并列出候选术语，只做建议不入库
func runDictDiscover(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(debugMode)
	defer func() {
		_ = log.Sync()
	}()

	reader, err := document.ForPath(args[0])
	if err != nil {
		return err
	}
	doc, err := reader.Read(args[0])
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	// 原样保留的段落（代码块等）不参与扫描
	var sb strings.Builder
	for i, p := range doc.Paragraphs {
		if i < len(doc.Records) && doc.Records[i].Verbatim {
			continue
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}

	store := openStore(cmd, log)
	out := cmd.OutOrStdout()

	candidates := dictionary.DiscoverTerms(sb.String(), store.Merged())
	if len(candidates) == 0 {
		fmt.Fprintln(out, "no new term candidates found")
		return nil
	}
	if len(candidates) > discoverLimit {
		candidates = candidates[:discoverLimit]
	}

	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintf(out, "🔍 Term Candidates (%s)\n", args[0])

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Term", "Count", "Reason"})
	for _, c := range candidates {
		tbl.AppendRow(table.Row{c.Term, c.Count, c.Reason})
	}
	tbl.Render()

	fmt.Fprintln(out, "pin a translation with: dict-translator dict add <term> <translation>")
	return nil
}
