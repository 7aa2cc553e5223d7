package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/urfave/cli/v2"

	"craftbridge/cache"
	"craftbridge/dump"
	"craftbridge/level/chunk"
	"craftbridge/logger"
	"craftbridge/translate"
)

var bridge = struct {
	Config *Config
	Logger *logger.Logger
}{
	Logger: logger.New(false),
}

func main() {
	app := &cli.App{
		Name:  "craftbridge",
		Usage: "encodes Java edition chunks as Bedrock level chunk payloads",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "craftbridge.yml", Usage: "config file, created if missing"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			config, err := LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			bridge.Config = config
			bridge.Logger.SetDebug(config.Debug || c.Bool("debug"))
			bridge.Logger.Debug("Loaded config from %s", c.String("config"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "empty",
				Usage:  "print the empty section and column payloads",
				Action: emptyAction,
			},
			{
				Name:      "translate",
				Usage:     "translate region files into a chunk dump",
				ArgsUsage: "<r.X.Z.mca>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "dump file, defaults to the configured output"},
					&cli.StringSliceFlag{Name: "set", Usage: "override a block after translation, as x,y,z=runtime_id"},
					&cli.IntFlag{Name: "level", Value: flate.DefaultCompression, Usage: "flate compression level"},
				},
				Action: translateAction,
			},
			{
				Name:      "inspect",
				Usage:     "list the records of a chunk dump",
				ArgsUsage: "<dump>",
				Action:    inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		bridge.Logger.Fatal("%v", err)
	}
}

func emptyAction(c *cli.Context) error {
	empty, err := chunk.NewEmptyChunkProvider(bridge.Config.Bedrock.AirID)
	if err != nil {
		return err
	}
	bridge.Logger.Print("section %s", hex.EncodeToString(empty.SectionBytes()))
	bridge.Logger.Print("column  %s", hex.EncodeToString(empty.ColumnBytes()))
	return nil
}

func loadMappings() (*translate.Mappings, error) {
	config := bridge.Config
	m, err := translate.LoadMappings(config.Mappings, bridge.Logger.With("mappings"))
	if errors.Is(err, fs.ErrNotExist) {
		bridge.Logger.Warn("No mappings at %s, every block becomes air", config.Mappings)
		return translate.NewMappings(config.Bedrock.AirID, config.Bedrock.WaterID, nil, nil), nil
	}
	return m, err
}

type override struct {
	x, y, z int
	id      uint32
}

func parseOverrides(values []string) ([]override, error) {
	out := make([]override, 0, len(values))
	for _, v := range values {
		var o override
		if _, err := fmt.Sscanf(v, "%d,%d,%d=%d", &o.x, &o.y, &o.z, &o.id); err != nil {
			return nil, fmt.Errorf("bad --set %q: %w", v, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func translateAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("need at least one region file")
	}
	config := bridge.Config
	overrides, err := parseOverrides(c.StringSlice("set"))
	if err != nil {
		return err
	}
	m, err := loadMappings()
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		output = config.Output
	}
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()
	w, err := dump.NewWriter(file, c.Int("level"))
	if err != nil {
		return err
	}

	empty, err := chunk.NewEmptyChunkProvider(m.Air)
	if err != nil {
		return err
	}
	session := uuid.New()
	start := time.Now()
	for _, path := range c.Args().Slice() {
		rx, rz, err := RegionPosition(path)
		if err != nil {
			return err
		}
		log := bridge.Logger.With(fmt.Sprintf("r.%d.%d", rx, rz))
		columns, err := cache.New(session, config.Cache.MaxColumns, translate.Bounds{ExtendedHeight: config.Bedrock.ExtendedHeight}, empty, log)
		if err != nil {
			return err
		}

		err = ReadRegion(path, func(jc JavaChunk) error {
			t := &translate.Translator{
				Mappings: m,
				Bounds:   translate.Bounds{JavaMinY: jc.MinY, ExtendedHeight: config.Bedrock.ExtendedHeight},
				Empty:    empty,
			}
			res, err := t.Column(jc.Position, jc.Chunk)
			if err != nil {
				return err
			}
			columns.Store(res)
			for _, o := range overrides {
				if o.x>>4 != int(jc.Position.X()) || o.z>>4 != int(jc.Position.Z()) {
					continue
				}
				if err := columns.UpdateBlock(o.x, o.y, o.z, chunk.LayerBlocks, o.id); err != nil {
					log.Warn("Cannot set block at %d %d %d: %v", o.x, o.y, o.z, err)
				}
			}
			pk, err := columns.Packet(jc.Position)
			if err != nil {
				return err
			}
			log.Debug("Chunk %v: %d sub chunks, %d bytes", jc.Position, pk.SubChunkCount, len(pk.RawPayload))
			return w.Write(pk)
		}, func(x, z int, err error) {
			log.Error("Skipping chunk %d %d: %v", x, z, err)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	bridge.Logger.Info("Wrote %d chunks to %s in %s", w.Records(), output, time.Since(start).Round(time.Millisecond))
	return file.Close()
}

func inspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("need exactly one dump file")
	}
	file, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	r := dump.NewReader(file)
	records := 0
	for {
		pk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", records, err)
		}
		records++
		bridge.Logger.Print("%4d %4d  sub chunks %2d  payload %6d bytes", pk.Position.X(), pk.Position.Z(), pk.SubChunkCount, len(pk.RawPayload))
	}
	bridge.Logger.Info("%d records", records)
	return nil
}
