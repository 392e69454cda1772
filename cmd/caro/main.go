// Command caro translates a natural-language request into a POSIX shell
// command, printing the command, its risk level and an explanation.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/agent"
	"github.com/siryoos/caro/internal/config"
	"github.com/siryoos/caro/internal/diagnostics"
	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/generators/remote"
	"github.com/siryoos/caro/internal/inference"
	"github.com/siryoos/caro/internal/logging"
	"github.com/siryoos/caro/internal/matcher"
	"github.com/siryoos/caro/internal/models"
	"github.com/siryoos/caro/internal/pipeline"
	"github.com/siryoos/caro/internal/platform"
	"github.com/siryoos/caro/internal/safety"
	"github.com/siryoos/caro/internal/selector"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "caro: translate natural language into a shell command.\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  caro [flags] <request>\n  caro diagnostics\n  caro model download [id]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Flags:\n")
		flag.PrintDefaults()
	}

	safetyFlag := flag.String("safety", "", "Safety policy: strict, moderate (default), permissive.")
	agentFlag := flag.Bool("agent", false, "Enable the agent loop's iterative refinement.")
	metricsFlag := flag.Bool("metrics", false, "Dump session metrics to stderr after generating.")
	configPath := flag.String("config", config.DefaultPath(), "Path to caro's config file.")
	backendFlag := flag.String("backend", "", "Prefer this backend id (e.g. embedded, ollama) over composite scoring.")
	flag.Parse()

	logger := logging.New(logging.Config{Output: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetActive(cfg)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch flag.Arg(0) {
	case "diagnostics":
		runDiagnostics()
		return
	case "model":
		runModel(flag.Args()[1:])
		return
	}

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" {
		fmt.Fprintln(os.Stderr, "error: empty request")
		os.Exit(1)
	}

	policy := resolvePolicy(*safetyFlag, cfg.SafetyPolicy)
	profile := platform.Detect()

	p := buildPipeline(cfg, profile, policy, *agentFlag)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, err := p.Generate(ctx, generator.Request{Input: input, Shell: profile.Shell, Safety: policy, Backend: *backendFlag})
	if err != nil {
		if gerr, ok := err.(*generator.Error); ok {
			fmt.Fprintln(os.Stderr, gerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	fmt.Println(cmd.Command)
	if cmd.Explanation != "" {
		fmt.Fprintf(os.Stderr, "# %s\n", cmd.Explanation)
	}
	fmt.Fprintf(os.Stderr, "risk: %s (%s) — backend: %s\n", cmd.Risk, cmd.EstimatedImpact, cmd.BackendUsed)

	if *metricsFlag {
		p.Metrics.DumpJSON(os.Stderr)
	}

	logger.Info("generated command", "backend", cmd.BackendUsed, "risk", cmd.Risk.String())
}

func resolvePolicy(flagVal, cfgVal string) safety.Policy {
	v := strings.ToLower(strings.TrimSpace(flagVal))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(cfgVal))
	}
	switch v {
	case "strict":
		return safety.Strict
	case "permissive":
		return safety.Permissive
	default:
		return safety.ModeratePolicy
	}
}

// buildPipeline assembles the static matcher, the backend registry (embedded
// engine plus any configured remote generators) and, optionally, the agent
// loop, per §2's data flow.
func buildPipeline(cfg *config.Config, profile platform.Profile, policy safety.Policy, agentEnabled bool) *pipeline.Pipeline {
	m := matcher.New(policy)
	sel := selector.New()
	v := safety.New(policy)

	p := pipeline.New(m, sel, v, profile)
	p.AgentEnabled = agentEnabled
	p.AgentLinter = agent.Linter{}
	if cfg.Agent.DeadlineSec > 0 {
		p.AgentDeadline = time.Duration(cfg.Agent.DeadlineSec) * time.Second
	}

	if loader, err := models.NewLoader(); err == nil {
		var engine *inference.Engine
		if profile.SupportsGPU {
			if gpuEngine, err := inference.NewGPU(); err == nil {
				engine = gpuEngine
			}
		}
		if engine == nil {
			engine = inference.NewCPU()
		}
		embedded := inference.NewEmbedded(engine, loader)
		sel.Add(embedded, "embedded", 100)
	}

	for name, rb := range cfg.Remotes {
		if g := buildRemoteGenerator(name, rb); g != nil {
			sel.Add(g, name, rb.Priority)
		}
	}

	return p
}

func buildRemoteGenerator(name string, rb config.RemoteBackend) generator.Generator {
	switch strings.ToLower(name) {
	case "ollama":
		return &remote.Ollama{Endpoint: rb.Endpoint, Model: rb.Model}
	case "vllm":
		return &remote.VLLM{Endpoint: rb.Endpoint, Model: rb.Model, APIKey: rb.APIKey()}
	case "claude":
		return &remote.Claude{Endpoint: rb.Endpoint, Model: rb.Model, APIKey: rb.APIKey()}
	case "azure-foundry", "azure_foundry":
		return &remote.AzureFoundry{Endpoint: rb.Endpoint, APIKey: rb.APIKey()}
	case "exo":
		return &remote.Exo{Endpoint: rb.Endpoint, Model: rb.Model}
	case "jukebox":
		return &remote.Jukebox{Endpoint: rb.Endpoint, Model: rb.Model}
	default:
		return nil
	}
}

func runDiagnostics() {
	profile := platform.Detect()
	loader, _ := models.NewLoader()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report := diagnostics.Collect(ctx, profile, loader, "http://localhost:11434")
	fmt.Print(report.Human())
}

func runModel(args []string) {
	if len(args) == 0 || args[0] != "download" {
		fmt.Fprintln(os.Stderr, "usage: caro model download [id]")
		os.Exit(2)
	}

	id := ""
	if len(args) > 1 {
		id = args[1]
	}

	var loader *models.Loader
	var err error
	if id == "" {
		loader, err = models.NewLoader()
	} else {
		loader, err = models.WithModel(id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resolving model: %v\n", err)
		os.Exit(1)
	}

	d := loader.Selected()
	dest, found := loader.Resolve()
	if found {
		fmt.Printf("model %s already cached at %s\n", d.ID, dest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	fmt.Printf("downloading %s (%s, ~%d MiB)...\n", d.ID, d.DisplayName, d.ExpectedMiB)
	if err := models.Download(ctx, http.DefaultClient, d, dest, func(p models.Progress) {}); err != nil {
		fmt.Fprintf(os.Stderr, "download failed: %v\n", err)
		os.Exit(1)
	}

	if _, err := models.Verify(dest, d); err != nil {
		fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("model %s cached at %s\n", d.ID, dest)
}
