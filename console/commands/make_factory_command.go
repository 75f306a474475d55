package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm/schema"
)

const DefaultFactoryDir = "./db/factories"

type MakeFactoryCommand struct {
	BaseCommand
	Dir string
}

func (c *MakeFactoryCommand) GetSignature() string {
	return "make:factory"
}

func (c *MakeFactoryCommand) GetDescription() string {
	return "Create a new factory"
}

func (c *MakeFactoryCommand) Execute(args []string) error {
	var modelName string

	if len(args) == 0 {
		modelName = c.askForModelName()
	} else {
		modelName = args[0]
	}

	if modelName == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	if err := c.ValidateName(modelName, ""); err != nil {
		return err
	}

	return c.createFactory(modelName)
}

func (c *MakeFactoryCommand) askForModelName() string {
	return c.AskRequired("Enter model name (e.g., User, Product)")
}

func (c *MakeFactoryCommand) createFactory(name string) error {
	factoryDir := c.Dir
	if factoryDir == "" {
		factoryDir = DefaultFactoryDir
	}

	if err := os.MkdirAll(factoryDir, 0755); err != nil {
		return fmt.Errorf("failed to create factories directory: %v", err)
	}

	structName := c.FormatStructName(name)
	fileName := schema.NamingStrategy{}.ColumnName("", structName) + "_factory.go"
	filePath := filepath.Join(factoryDir, fileName)

	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("factory file %s already exists", filePath)
	}

	moduleName, err := c.GetModuleName()
	if err != nil {
		return fmt.Errorf("failed to get module name: %v", err)
	}

	factoryName := structName + "Factory"

	if err := c.GenerateFromStub("factories/factory.go.stub", filePath, FactoryTemplate{
		FactoryName:        factoryName,
		FactoryConstructor: "New" + factoryName,
		FactoryLabel:       strings.ToLower(structName),
		ModelName:          structName,
		Timestamp:          time.Now().Format("2006-01-02 15:04:05"),
		ModuleName:         moduleName,
		LibraryModule:      LibraryModule,
	}); err != nil {
		return err
	}

	c.PrintSuccess("Factory created successfully: " + filePath)
	fmt.Fprintf(c.out(), "📝 Factory struct: %s\n", factoryName)
	fmt.Fprintf(c.out(), "📝 Model: %s\n", structName)

	return nil
}

type FactoryTemplate struct {
	FactoryName        string
	FactoryConstructor string
	FactoryLabel       string
	ModelName          string
	Timestamp          string
	ModuleName         string
	LibraryModule      string
}
