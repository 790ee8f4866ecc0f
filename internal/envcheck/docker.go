package envcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// ContainerLister returns the names of running containers.
type ContainerLister interface {
	RunningContainers(ctx context.Context) ([]string, error)
}

type dockerLister struct{}

func (dockerLister) RunningContainers(ctx context.Context) ([]string, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	defer cli.Close()

	containers, err := cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	var names []string
	for _, container := range containers {
		for _, name := range container.Names {
			names = append(names, strings.TrimPrefix(name, "/"))
		}
	}
	return names, nil
}

func (c *Checker) checkDocker(ctx context.Context) []Check {
	if !c.cfg.Docker.Required {
		return nil
	}
	listCtx, cancel := c.commandContext(ctx)
	defer cancel()

	running, err := c.docker.RunningContainers(listCtx)
	if err != nil {
		// An unreachable daemon is reported but does not fail the run.
		return []Check{warn(SectionDocker, "docker", fmt.Sprintf("Could not check Docker services: %v", err))}
	}

	checks := make([]Check, 0, len(c.cfg.Docker.Services))
	for _, svc := range c.cfg.Docker.Services {
		name := svc.ContainerName
		if containerRunning(running, name) {
			checks = append(checks, pass(SectionDocker, name, name+" is running"))
		} else {
			checks = append(checks, fail(SectionDocker, name, name+" is not running"))
		}
	}
	return checks
}

func containerRunning(running []string, name string) bool {
	for _, candidate := range running {
		if strings.Contains(candidate, name) {
			return true
		}
	}
	return false
}
