package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joshemcr2/users-api/internal/cmd/config"
	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v2"
)

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} ",
	Valid:   "{{ . | green }} ",
	Invalid: "{{ . | red }} ",
	Success: "{{ . | bold }} ",
}

func validateNumber(v string) error {
	if n, err := strconv.ParseUint(v, 10, 0); err != nil || n == 0 {
		return errors.New("invalid number")
	}
	return nil
}

func validateString(v string) error {
	if !(len(v) > 0) {
		return errors.New("invalid string")
	}
	return nil
}

func prompt(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		Validate:  validate,
		Templates: templates,
	}
	return p.Run()
}

func choose(label string, items []string) (string, error) {
	s := promptui.Select{Label: label, Items: items}
	_, v, err := s.Run()
	return v, err
}

// initEnv asks for every setting, starting from the chosen profile, and
// writes the answers to a dotenv file.
func initEnv(cCtx *cli.Context) error {
	env, err := choose("Environment", config.Profiles())
	if err != nil {
		return err
	}

	c, err := config.Profile(env)
	if err != nil {
		return err
	}

	if c.Server.Port, err = prompt("Server Port", c.Server.Port, validateNumber); err != nil {
		return err
	}

	if c.Store.Kind, err = choose("User Store", []string{config.StorePostgres, config.StoreMemory}); err != nil {
		return err
	}

	if c.Store.Kind == config.StorePostgres {
		if c.Store.DatabaseURL, err = prompt("PostgreSQL URL", c.Store.DatabaseURL, validateString); err != nil {
			return err
		}
	}

	cacheOn, err := choose("Response Cache", []string{"enabled", "disabled"})
	if err != nil {
		return err
	}
	c.Cache.Enable = cacheOn == "enabled"

	if c.Cache.Enable {
		if c.Redis.Addr, err = prompt("Redis Address", c.Redis.Addr, validateString); err != nil {
			return err
		}

		ttl, err := prompt("Cache TTL (seconds)", strconv.Itoa(int(c.Cache.TTL/time.Second)), validateNumber)
		if err != nil {
			return err
		}
		n, _ := strconv.Atoi(ttl)
		c.Cache.TTL = time.Duration(n) * time.Second
	}

	if err := c.Validate(); err != nil {
		return err
	}

	out := cCtx.String("out")
	if err := c.WriteToFile(out); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cCtx.App.Writer, "wrote %s\n", out)
	return err
}
