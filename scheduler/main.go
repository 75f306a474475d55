package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/galaplate/fixture/config"
	"github.com/galaplate/fixture/logger"
	"github.com/galaplate/fixture/seeder"
)

type Handler interface {
	Handle() (string, func())
}

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
	}
}

// RunTasks adds every registered handler to the cron.
func (s *Scheduler) RunTasks() error {
	names := make([]string, 0, len(SchedulerRegistry))
	for name := range SchedulerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := s.AddTask(SchedulerRegistry[name].Handle()); err != nil {
			return fmt.Errorf("register scheduler %s: %w", name, err)
		}
		logger.Info("Registered scheduler", map[string]any{"scheduler": name})
	}
	return nil
}

func (s *Scheduler) AddTask(spec string, task func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, task)
}

func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

var SchedulerRegistry = map[string]Handler{}

func RegisterScheduler(name string, scheduler Handler) {
	SchedulerRegistry[name] = scheduler
}

// SeederJob runs one named seeder on a cron spec.
type SeederJob struct {
	Spec     string
	Seeder   string
	Registry *seeder.Registry
}

func (j SeederJob) Handle() (string, func()) {
	return j.Spec, j.Run
}

func (j SeederJob) Run() {
	registry := j.Registry
	if registry == nil {
		registry = seeder.Default()
	}

	if err := registry.Run(context.Background(), j.Seeder); err != nil {
		logger.Error("Scheduled seeder failed", map[string]any{
			"seeder": j.Seeder,
			"spec":   j.Spec,
			"error":  err.Error(),
		})
	}
}

// RegisterSeeders registers a SeederJob for every entry of scheduler.seeders,
// a mapping of seeder name to cron spec.
func RegisterSeeders(m *config.Manager, registry *seeder.Registry) error {
	if registry == nil {
		registry = seeder.Default()
	}

	entries, _ := m.Get("scheduler.seeders").(map[string]any)
	for name, spec := range entries {
		specStr, ok := spec.(string)
		if !ok || specStr == "" {
			return fmt.Errorf("scheduler.seeders.%s: cron spec must be a string", name)
		}
		if _, ok := registry.Get(name); !ok {
			return fmt.Errorf("scheduler.seeders.%s: %w", name, seeder.ErrUnknownSeeder)
		}
		RegisterScheduler("seeder:"+name, SeederJob{Spec: specStr, Seeder: name, Registry: registry})
	}
	return nil
}
