package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mediareach/press-cli/internal/workflow"
)

var runTopic string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive distribution session",
	Long:  "Walks a press release from generation to distribution. Each stage shows its result and waits for explicit approval before anything irreversible happens.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		return runSession(cmd, env.workflow, os.Stdin)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "press release topic (prompted when omitted)")
	rootCmd.AddCommand(runCmd)
}

// runSession drives the workflow loop against the operator's terminal.
func runSession(cmd *cobra.Command, w *workflow.Workflow, in io.Reader) error {
	ctx := cmd.Context()
	reader := bufio.NewScanner(in)
	out := cmd.OutOrStdout()

	topic := strings.TrimSpace(runTopic)
	if topic == "" {
		fmt.Fprint(out, "Argomento del comunicato: ")
		topic = readLine(reader)
	}
	if topic == "" {
		return eris.New("run: no topic given")
	}
	w.SetTopic(topic)

	for {
		st := w.State()
		switch st.CurrentStep {
		case workflow.StepInitial:
			fmt.Fprintln(out, "Generazione del comunicato stampa...")

		case workflow.StepPressRelease:
			fmt.Fprintf(out, "\n--- Comunicato generato ---\n%s\n---------------------------\n", st.PressRelease)
			if !confirm(out, reader, "Approvi il testo e procedi con l'estrazione dei temi?") {
				fmt.Fprintln(out, "Sessione annullata.")
				return nil
			}
			w.Approve()

		case workflow.StepTopics:
			fmt.Fprintf(out, "\nTemi estratti: %s\n", strings.Join(st.Topics, ", "))
			fmt.Fprint(out, "Modifica i temi (separati da virgola, invio per confermare): ")
			if edited := readLine(reader); edited != "" {
				w.SetTopics(strings.Split(edited, ","))
			}
			if !confirm(out, reader, "Avvio la ricerca dei destinatari?") {
				fmt.Fprintln(out, "Sessione annullata.")
				return nil
			}
			w.Approve()

		case workflow.StepRecipients:
			fmt.Fprintf(out, "\nDestinatari trovati: %d\n", len(st.Recipients))
			for _, r := range st.Recipients {
				email := r.Email
				if email == "" {
					email = "(email non trovata)"
				}
				fmt.Fprintf(out, "  - %s <%s> %s [%s]\n", r.Name, email, r.Role, r.Publication)
			}
			if !confirm(out, reader, "Invio il comunicato via email a questi destinatari?") {
				fmt.Fprintln(out, "Sessione annullata.")
				return nil
			}
			w.Approve()

		case workflow.StepEmail:
			printOutcomes(out, "Esito invio email", st.EmailResults)
			if !confirm(out, reader, "Pubblico il comunicato sui social?") {
				fmt.Fprintln(out, "Sessione terminata senza pubblicazione social.")
				return nil
			}
			w.Approve()

		case workflow.StepSocialMedia:
			printOutcomes(out, "Esito pubblicazione social", st.SocialResults)
			fmt.Fprintln(out, "Distribuzione completata.")
			return nil
		}

		if err := w.Advance(ctx); err != nil {
			fmt.Fprintf(out, "Errore: %v\n", err)
			switch {
			case eris.Is(err, workflow.ErrNoRecipients) && st.CurrentStep == workflow.StepTopics:
				fmt.Fprintln(out, "Nessun destinatario trovato: modifica i temi e riprova.")
				continue
			case eris.Is(err, workflow.ErrSocialPostFailed):
				fmt.Fprintln(out, "Nessuna piattaforma ha accettato il post.")
				return err
			default:
				return err
			}
		}
	}
}

func readLine(reader *bufio.Scanner) string {
	if !reader.Scan() {
		return ""
	}
	return strings.TrimSpace(reader.Text())
}

func confirm(out io.Writer, reader *bufio.Scanner, prompt string) bool {
	fmt.Fprintf(out, "%s [s/n]: ", prompt)
	answer := strings.ToLower(readLine(reader))
	return answer == "s" || answer == "si" || answer == "y" || answer == "yes"
}

func printOutcomes(out io.Writer, title string, results map[string]bool) {
	fmt.Fprintf(out, "\n%s:\n", title)
	if len(results) == 0 {
		fmt.Fprintln(out, "  (nessun invio eseguito)")
		return
	}
	for target, ok := range results {
		status := "inviato"
		if !ok {
			status = "fallito"
		}
		fmt.Fprintf(out, "  - %s: %s\n", target, status)
	}
}
