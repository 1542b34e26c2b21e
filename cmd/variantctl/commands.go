package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// errDefect makes the process exit non-zero after the result was printed.
var errDefect = errors.New("catalog defect found")

type options struct {
	file     string
	selects  []string
	quantity int
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "variantctl",
		Short:         "Resolve and audit product variant catalogs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "product snapshot (.json, .yaml or .yml)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")

	root.AddCommand(newResolveCmd(opts), newEstimateCmd(opts), newAuditCmd(opts), newCreateAdminCmd(opts))
	return root
}

func newResolveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a selection to a purchasable combination",
		Long: `Resolves --select attribute=value picks against the product snapshot.
Exits 1 when a complete selection hits a catalog defect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs, p, sel, err := prepare(opts)
			if err != nil {
				return err
			}
			res, err := vs.Resolve(cmd.Context(), p.ID, sel, opts.quantity)
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), opts.output, res); err != nil {
				return err
			}
			if res.Defect != "" {
				return fmt.Errorf("%w: %s", errDefect, res.Defect)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&opts.selects, "select", "s", nil, "attribute pick as attributeId=valueId (repeatable)")
	cmd.Flags().IntVarP(&opts.quantity, "quantity", "q", 1, "quantity for the purchase gate")
	return cmd
}

func newEstimateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the price of a possibly partial selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs, p, sel, err := prepare(opts)
			if err != nil {
				return err
			}
			est, err := vs.Estimate(cmd.Context(), p.ID, sel)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, est)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.selects, "select", "s", nil, "attribute pick as attributeId=valueId (repeatable)")
	return cmd
}

func newAuditCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Validate a product snapshot and report catalog defects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProduct(opts.file)
			if err != nil {
				return err
			}
			report := service.BuildAuditReport(p)
			if err := render(cmd.OutOrStdout(), opts.output, report); err != nil {
				return err
			}
			if !report.Healthy() {
				return fmt.Errorf("%w: %d defect(s)", errDefect, len(report.Defects))
			}
			return nil
		},
	}
}

func prepare(opts *options) (*service.VariantService, *models.Product, variant.Selection, error) {
	p, err := loadProduct(opts.file)
	if err != nil {
		return nil, nil, variant.Selection{}, err
	}
	sel, err := variant.ParseSelection(opts.selects)
	if err != nil {
		return nil, nil, variant.Selection{}, err
	}
	vs := service.NewVariantService(staticCatalog{product: p}, 16, time.Minute, nil)
	return vs, p, sel, nil
}

// staticCatalog serves a single snapshot read from disk. It validates the
// snapshot like the API does, so a defective file fails the same way.
type staticCatalog struct {
	product *models.Product
}

func (s staticCatalog) GetSnapshot(_ context.Context, productID int) (*models.Product, error) {
	if productID != s.product.ID {
		return nil, utils.ErrProductNotFound
	}
	if err := variant.ValidateProduct(s.product); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrCatalogInconsistent, err)
	}
	return s.product, nil
}
