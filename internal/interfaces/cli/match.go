package cli

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/pkg/errors"
)

func newMatchCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run matching engine operations",
	}
	cmd.AddCommand(newMatchBatchCommand(opts))
	return cmd
}

func newMatchBatchCommand(opts *rootOptions) *cobra.Command {
	var applicantIDs []string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score applicants against the full project inventory and persist the matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.newLogger(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			applicants, err := resolveBatchApplicants(cmd, rt, applicantIDs)
			if err != nil {
				return err
			}
			projects, err := rt.projects.List(ctx, project.Filter{})
			if err != nil {
				return err
			}

			summary, err := rt.matching.BatchMatch(ctx, applicants, projects)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringSliceVar(&applicantIDs, "applicant", nil,
		"applicant UUID to include (repeatable); all applicants when omitted")
	return cmd
}

func resolveBatchApplicants(cmd *cobra.Command, rt *runtime, ids []string) ([]*applicant.Applicant, error) {
	ctx := cmd.Context()
	if len(ids) == 0 {
		return rt.applicants.List(ctx, applicant.Filter{})
	}
	out := make([]*applicant.Applicant, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Newf(errors.CodeInvalidParam, "invalid applicant id %q", raw)
		}
		a, err := rt.applicants.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
