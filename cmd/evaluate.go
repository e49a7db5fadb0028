package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const defaultServerAddr = "http://localhost:8080"

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <candidate-id>",
	Short: "Trigger evaluation of a candidate on a running hiresage instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return evaluate(cmd, args[0])
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Trigger one batch sweep of all pending candidates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return postJSON(addr + "/api/evaluations/process")
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(processCmd)

	evaluateCmd.Flags().String("addr", defaultServerAddr, "address of the running hiresage instance")
	evaluateCmd.Flags().BoolP("recalculate", "r", false, "overwrite existing scores (never re-sends letters)")
	evaluateCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before recalculating")

	processCmd.Flags().String("addr", defaultServerAddr, "address of the running hiresage instance")
}

func evaluate(cmd *cobra.Command, candidateID string) error {
	addr, _ := cmd.Flags().GetString("addr")
	recalculate, _ := cmd.Flags().GetBool("recalculate")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	path := fmt.Sprintf("%s/api/candidates/%s/evaluate", addr, candidateID)
	if recalculate {
		if !autoApprove {
			prompt := promptui.Select{
				Label: fmt.Sprintf("Recalculate overwrites the stored scores of %s. Proceed?", candidateID),
				Items: []string{"Yes", "No"},
			}
			_, answer, err := prompt.Run()
			if err != nil {
				return err
			}
			if answer != "Yes" {
				fmt.Println("aborted")
				return nil
			}
		}
		path = fmt.Sprintf("%s/api/candidates/%s/recalculate", addr, candidateID)
	}

	return postJSON(path)
}

func postJSON(url string) error {
	client := &http.Client{Timeout: 5 * time.Minute}

	resp, err := client.Post(url, "application/json", bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil
}
