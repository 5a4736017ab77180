package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage allow-listed crawl domains",
}

var domainAddCmd = &cobra.Command{
	Use:   "add [domain]",
	Short: "Allow-list a domain for crawling",
	Long: `Allow-list a domain for the organisation. Registering a domain that is
already listed updates its depth and recrawl interval.`,
	Args: cobra.ExactArgs(1),
	RunE: runDomainAdd,
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allow-listed domains",
	Args:  cobra.NoArgs,
	RunE:  runDomainList,
}

var domainEnableCmd = &cobra.Command{
	Use:   "enable [domain]",
	Short: "Enable crawling of a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setDomainEnabled(cmd, args[0], true) },
}

var domainDisableCmd = &cobra.Command{
	Use:   "disable [domain]",
	Short: "Disable crawling of a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setDomainEnabled(cmd, args[0], false) },
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run and inspect crawls",
}

var crawlTriggerCmd = &cobra.Command{
	Use:   "trigger [domain]",
	Short: "Crawl the organisation now",
	Long: `Crawl the organisation's enabled domains now, ignoring the recrawl
interval. With a domain only that registration is crawled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawlTrigger,
}

var crawlNightlyCmd = &cobra.Command{
	Use:   "nightly",
	Short: "Run the nightly crawl for every organisation",
	Args:  cobra.NoArgs,
	RunE:  runCrawlNightly,
}

var crawlStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the organisation's crawl status",
	Args:  cobra.NoArgs,
	RunE:  runCrawlStatus,
}

var (
	domainDepth    int
	domainRecrawl  int
	domainDisabled bool
)

func init() {
	domainAddCmd.Flags().IntVar(&domainDepth, "depth", domain.DefaultCrawlDepth, "link depth to follow")
	domainAddCmd.Flags().IntVar(&domainRecrawl, "recrawl-hours", domain.DefaultRecrawlHours, "minimum hours between crawls")
	domainAddCmd.Flags().BoolVar(&domainDisabled, "disabled", false, "register without enabling")

	domainCmd.AddCommand(domainAddCmd)
	domainCmd.AddCommand(domainListCmd)
	domainCmd.AddCommand(domainEnableCmd)
	domainCmd.AddCommand(domainDisableCmd)
	rootCmd.AddCommand(domainCmd)

	crawlCmd.AddCommand(crawlTriggerCmd)
	crawlCmd.AddCommand(crawlNightlyCmd)
	crawlCmd.AddCommand(crawlStatusCmd)
	rootCmd.AddCommand(crawlCmd)
}

func runDomainAdd(cmd *cobra.Command, args []string) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	reg, err := crawlService.RegisterDomain(cmd.Context(), domain.DomainRegistration{
		TenantID:     tenantID,
		Domain:       args[0],
		Enabled:      !domainDisabled,
		CrawlDepth:   domainDepth,
		RecrawlHours: domainRecrawl,
	})
	if err != nil {
		return fmt.Errorf("failed to register domain: %w", err)
	}

	cmd.Printf("Registered %s (depth %d, every %dh, enabled=%t)\n",
		reg.Domain, reg.CrawlDepth, reg.RecrawlHours, reg.Enabled)
	return nil
}

func runDomainList(cmd *cobra.Command, _ []string) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	regs, err := crawlService.ListDomains(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}
	if len(regs) == 0 {
		cmd.Printf("No domains registered for %s\n", tenantID)
		return nil
	}

	for i := range regs {
		state := "enabled"
		if !regs[i].Enabled {
			state = "disabled"
		}
		last := "never"
		if !regs[i].LastCrawledAt.IsZero() {
			last = regs[i].LastCrawledAt.Format(timeLayout)
		}
		cmd.Printf("  %-30s %-8s depth %d, every %dh, last crawled %s\n",
			regs[i].Domain, state, regs[i].CrawlDepth, regs[i].RecrawlHours, last)
	}
	return nil
}

func setDomainEnabled(cmd *cobra.Command, domainName string, enabled bool) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	if err := crawlService.SetDomainEnabled(cmd.Context(), tenantID, domainName, enabled); err != nil {
		return fmt.Errorf("failed to update domain: %w", err)
	}
	if enabled {
		cmd.Printf("Enabled %s\n", domainName)
	} else {
		cmd.Printf("Disabled %s\n", domainName)
	}
	return nil
}

func runCrawlTrigger(cmd *cobra.Command, args []string) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	var domainName string
	if len(args) == 1 {
		domainName = args[0]
	}
	result, err := crawlService.TriggerTenant(cmd.Context(), tenantID, domainName, actor())
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	printTenantCrawl(cmd, result)
	return nil
}

func runCrawlNightly(cmd *cobra.Command, _ []string) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}

	report, err := crawlService.RunNightly(cmd.Context(), actor())
	if err != nil {
		return fmt.Errorf("nightly crawl failed: %w", err)
	}

	cmd.Printf("Tenants selected: %d\n", report.TenantsSelected)
	cmd.Printf("Jobs created:     %d\n", report.JobsCreated)
	cmd.Printf("Succeeded:        %d\n", report.Succeeded)
	cmd.Printf("Failed:           %d\n", report.Failed)
	for i := range report.Tenants {
		printTenantCrawl(cmd, &report.Tenants[i])
	}
	return nil
}

func runCrawlStatus(cmd *cobra.Command, _ []string) error {
	if crawlService == nil {
		return errors.New("crawl service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	status, err := crawlService.Status(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("failed to get crawl status: %w", err)
	}

	cmd.Printf("State:   %s\n", status.State)
	cmd.Printf("Domains: %d\n", status.Domains)
	cmd.Printf("Pages:   %d\n", status.Pages)
	cmd.Printf("Chunks:  %d\n", status.Chunks)
	if status.Message != "" {
		cmd.Printf("Message: %s\n", status.Message)
	}
	if job := status.LastJob; job != nil {
		cmd.Printf("Last job: %s (%s, %s)\n", job.ID, job.Type, job.Status)
	}
	return nil
}

func printTenantCrawl(cmd *cobra.Command, r *domain.TenantCrawlResult) {
	cmd.Printf("  %s: %s, job %s, %d domains, %d pages, %d chunks\n",
		r.TenantID, r.Status, r.JobID, r.Domains, r.Pages, r.Chunks)
	if r.Error != "" {
		cmd.Printf("    error: %s\n", r.Error)
	}
}
