package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
)

// validProjectName matches valid project names (alphanumeric, hyphens, underscores)
var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Create a new topology project",
		Long: `Init creates a new project with a starter two-zone topology.

The project is created in a subdirectory with the given name.
Multiple projects can coexist in the same workspace.

Examples:
    topowire init web-stack      # Creates ./web-stack/
    topowire init data-plane     # Creates ./data-plane/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(".", args[0])
		},
	}
}

// runInit creates a new project in {workspaceDir}/{projectName}/
func runInit(workspaceDir, projectName string) error {
	if !validProjectName.MatchString(projectName) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, hyphens, or underscores", projectName)
	}

	projectPath := filepath.Join(workspaceDir, projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("project already exists: %s", projectPath)
	}

	topologyDir := filepath.Join(projectPath, "topology")
	if err := os.MkdirAll(topologyDir, 0755); err != nil {
		return fmt.Errorf("creating topology directory: %w", err)
	}

	mainHCL := `variable "region" {
  value       = "us-east-1"
  description = "Placement region for availability zones"
}

network "main" {
  cidr = "10.0.0.0/16"
}

subnet "public_a" {
  network    = "main"
  cidr       = "10.0.1.0/24"
  zone       = "${var.region}a"
  visibility = "public"
}

subnet "public_b" {
  network    = "main"
  cidr       = "10.0.2.0/24"
  zone       = "${var.region}b"
  visibility = "public"
}

subnet "app_a" {
  network    = "main"
  cidr       = "10.0.10.0/24"
  zone       = "${var.region}a"
  visibility = "private"
}

subnet "app_b" {
  network    = "main"
  cidr       = "10.0.11.0/24"
  zone       = "${var.region}b"
  visibility = "private"
}

internet_gateway "igw" {
  network = "main"
}

nat_gateway "nat_a" {
  subnet = "public_a"
}

nat_gateway "nat_b" {
  subnet = "public_b"
}

route_table "public" {
  subnets = ["public_a", "public_b"]

  route {
    destination = "0.0.0.0/0"
    gateway     = "igw"
  }
}

route_table "app_a" {
  subnets = ["app_a"]

  route {
    destination = "0.0.0.0/0"
    gateway     = "nat_a"
  }
}

route_table "app_b" {
  subnets = ["app_b"]

  route {
    destination = "0.0.0.0/0"
    gateway     = "nat_b"
  }
}

target_group "app" {
  port     = 8080
  protocol = "HTTP"

  health_check {
    path = "/health_check"
  }
}

load_balancer "edge" {
  subnets = ["public_a", "public_b"]

  listener {
    port     = 443
    protocol = "HTTPS"
    forward  = "app"
  }

  listener {
    port        = 80
    protocol    = "HTTP"
    redirect_to = 443
  }
}

service "app" {
  subnets        = ["app_a", "app_b"]
  security_group = "sg-app"
  target_group   = "app"
}
`
	if err := os.WriteFile(filepath.Join(topologyDir, "main.hcl"), []byte(mainHCL), 0644); err != nil {
		return fmt.Errorf("writing main.hcl: %w", err)
	}

	gitignore := `# Build output
topology.json
topology.yaml

# IDE
.idea/
.vscode/
*.swp
*.swo

# OS
.DS_Store
Thumbs.db
`
	if err := os.WriteFile(filepath.Join(projectPath, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Created project: %s/\n", projectPath)
	fmt.Printf("  └── topology/\n")
	fmt.Printf("      └── main.hcl\n")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  topowire validate ./%s/topology\n", projectName)
	fmt.Printf("  topowire build ./%s/topology -o topology.json\n", projectName)
	fmt.Println()

	return nil
}
