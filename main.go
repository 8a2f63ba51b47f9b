package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/vapi-caller/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	extractx "github.com/tanpawarit/vapi-caller/agent/extract"
	llmx "github.com/tanpawarit/vapi-caller/agent/llm"
	notifyx "github.com/tanpawarit/vapi-caller/agent/notify"
	pollerx "github.com/tanpawarit/vapi-caller/agent/poller"
	recordx "github.com/tanpawarit/vapi-caller/agent/record"
	summaryx "github.com/tanpawarit/vapi-caller/agent/summary"
	configx "github.com/tanpawarit/vapi-caller/pkg/config"
	logautoload "github.com/tanpawarit/vapi-caller/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/vapi-caller/pkg/openrouter"
	qstashx "github.com/tanpawarit/vapi-caller/pkg/qstash"
	vapix "github.com/tanpawarit/vapi-caller/pkg/vapi"
)

var defaultWaitSeconds = int(pollerx.DefaultTimeout / time.Second)

func main() {
	exitFn(run(os.Args, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[1] {
	case "call":
		return handleCall(ctx, args[2:], stdout, stderr)
	case "fetch":
		return handleFetch(ctx, args[2:], stdout, stderr)
	case "history":
		return handleHistory(ctx, args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func handleCall(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(stderr)
	to := fs.String("to", "", "destination phone number")
	goal := fs.String("goal", "", "what the assistant should accomplish")
	wait := fs.Int("wait", defaultWaitSeconds, "seconds to wait for the call to finish")
	assistantID := fs.String("assistant-id", "", "assistant id (default VAPI_ASSISTANT_ID)")
	phoneNumberID := fs.String("phone-number-id", "", "caller phone number id (default VAPI_PHONE_NUMBER_ID)")
	voice := fs.String("voice", "", "voice id override, e.g. alloy")
	jsonOut := fs.Bool("json", false, "print the raw call payload as JSON")
	withRaw := fs.Bool("raw", false, "append the raw call payload after the text report")
	output := fs.String("output", formatText, "output format: text, json or yaml")
	envFile := fs.String("env", "", "path to a .env file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 0 || strings.TrimSpace(*to) == "" || strings.TrimSpace(*goal) == "" {
		fmt.Fprintln(stderr, "call requires -to and -goal")
		fs.Usage()
		return 2
	}
	if *wait < 0 {
		fmt.Fprintln(stderr, "-wait must be zero or more seconds")
		fs.Usage()
		return 2
	}
	format, err := resolveFormat(*output, *jsonOut)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	env := configx.WithEnvFile(*envFile)
	if err := logautoload.Reload(env); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	vapiCfg, err := configx.New[vapix.Config]("VAPI", env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if v := strings.TrimSpace(*assistantID); v != "" {
		vapiCfg.AssistantID = v
	}
	if v := strings.TrimSpace(*phoneNumberID); v != "" {
		vapiCfg.PhoneNumberID = v
	}
	if code := validateVapi(*vapiCfg, stderr); code != 0 {
		return code
	}

	pollCfg, err := configx.New[pollerx.Config]("POLL", env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	orch, cleanup, err := buildOrchestrator(ctx, *vapiCfg, pollCfg.Options(time.Duration(*wait)*time.Second), env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer cleanup()

	res, err := orch.Call(ctx, orchestratorx.CallInput{
		Destination: *to,
		Goal:        *goal,
		Voice:       *voice,
		Wait:        time.Duration(*wait) * time.Second,
	})
	if err != nil {
		log.Error().Err(err).Msg("call failed")
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	if err := writeResult(stdout, res, format, *withRaw); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func handleFetch(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	callID := fs.String("call-id", "", "id of an existing call")
	jsonOut := fs.Bool("json", false, "print the raw call payload as JSON")
	withRaw := fs.Bool("raw", false, "append the raw call payload after the text report")
	output := fs.String("output", formatText, "output format: text, json or yaml")
	envFile := fs.String("env", "", "path to a .env file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	id, ok := callIDArg(fs, *callID, stderr)
	if !ok {
		return 2
	}
	format, err := resolveFormat(*output, *jsonOut)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	env := configx.WithEnvFile(*envFile)
	if err := logautoload.Reload(env); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	vapiCfg, err := configx.New[vapix.Config]("VAPI", env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if code := validateVapi(*vapiCfg, stderr); code != 0 {
		return code
	}

	orch, cleanup, err := buildOrchestrator(ctx, *vapiCfg, pollerx.Options{}, env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer cleanup()

	res, err := orch.Fetch(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("call_id", id).Msg("fetch failed")
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	if err := writeResult(stdout, res, format, *withRaw); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func handleHistory(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	callID := fs.String("call-id", "", "id of a persisted call")
	jsonOut := fs.Bool("json", false, "print the stored record as JSON")
	output := fs.String("output", formatText, "output format: text, json or yaml")
	envFile := fs.String("env", "", "path to a .env file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	id, ok := callIDArg(fs, *callID, stderr)
	if !ok {
		return 2
	}
	format, err := resolveFormat(*output, *jsonOut)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	env := configx.WithEnvFile(*envFile)
	if err := logautoload.Reload(env); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	store, cleanup, err := openRecordStore(ctx, env)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer cleanup()
	if store == nil {
		fmt.Fprintln(stderr, "Error: no record store configured, set RECORD_BACKEND")
		return 1
	}

	rec, err := store.Load(ctx, id)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	if format == formatText {
		fmt.Fprintln(stdout, summaryx.Format(rec.Snapshot, rec.Summary, rec.Outcome))
		return 0
	}
	if err := writeStructured(stdout, rec, format); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// validateVapi reports a missing credential as a runtime failure and bad ids as usage errors.
func validateVapi(cfg vapix.Config, stderr io.Writer) int {
	err := cfg.Validate()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, contractx.ErrMissingCredential):
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	default:
		fmt.Fprintln(stderr, err.Error())
		return 2
	}
}

func callIDArg(fs *flag.FlagSet, callID string, stderr io.Writer) (string, bool) {
	id := strings.TrimSpace(callID)
	if fs.NArg() != 0 || id == "" {
		fmt.Fprintf(stderr, "%s requires -call-id\n", fs.Name())
		fs.Usage()
		return "", false
	}
	if err := vapix.ValidateID("call id", id); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return "", false
	}
	return id, true
}

func buildOrchestrator(
	ctx context.Context,
	vapiCfg vapix.Config,
	poll pollerx.Options,
	env configx.Option,
) (*orchestratorx.Orchestrator, func(), error) {
	transport, err := vapix.NewClient(vapiCfg)
	if err != nil {
		return nil, nil, err
	}

	extractorCfg, err := configx.New[llmx.Config]("EXTRACTOR", env)
	if err != nil {
		return nil, nil, err
	}
	extractor, err := newExtractor(*extractorCfg)
	if err != nil {
		return nil, nil, err
	}

	notifier, err := newNotifier(env)
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := openRecordStore(ctx, env)
	if err != nil {
		return nil, nil, err
	}

	orch, err := orchestratorx.New(transport, extractor, store, notifier, orchestratorx.Config{
		AssistantID:   vapiCfg.AssistantID,
		PhoneNumberID: vapiCfg.PhoneNumberID,
		VoiceProvider: vapiCfg.VoiceProvider,
		Poll:          poll,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return orch, cleanup, nil
}

func newExtractor(cfg llmx.Config) (contractx.Extractor, error) {
	heuristic := extractx.NewHeuristic(cfg.KnownNames...)
	if !cfg.Enabled {
		return heuristic, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := extractx.NewLLM(openrouterx.NewClient(cfg.OpenRouter()), cfg.Model, cfg.KnownNames)
	if err != nil {
		return nil, err
	}
	return extractx.NewChain(heuristic, model), nil
}

func newNotifier(env configx.Option) (contractx.Notifier, error) {
	cfg, err := configx.New[qstashx.Config]("QSTASH", env)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := qstashx.NewClient(*cfg)
	if err != nil {
		return nil, err
	}
	notifier, err := notifyx.NewQStash(client)
	if err != nil {
		return nil, err
	}
	return notifier, nil
}

func openRecordStore(ctx context.Context, env configx.Option) (contractx.RecordStore, func(), error) {
	recordCfg, err := configx.New[recordx.Config]("RECORD", env)
	if err != nil {
		return nil, nil, err
	}
	upstashCfg, err := configx.New[recordx.UpstashRedisConfig]("UPSTASH_REDIS", env)
	if err != nil {
		return nil, nil, err
	}
	postgresCfg, err := configx.New[recordx.PostgresConfig]("POSTGRES", env)
	if err != nil {
		return nil, nil, err
	}

	store, err := recordx.Open(ctx, *recordCfg, *upstashCfg, *postgresCfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if closer, ok := store.(io.Closer); ok {
		cleanup = func() {
			if err := closer.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close record store")
			}
		}
	}
	return store, cleanup, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: vapi-caller <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  call     -to <number> -goal <text> [-wait 120] [-assistant-id] [-phone-number-id] [-voice] [-raw] [-json|-output]")
	fmt.Fprintln(w, "  fetch    -call-id <id> [-raw] [-json|-output]")
	fmt.Fprintln(w, "  history  -call-id <id> [-json|-output]")
}
