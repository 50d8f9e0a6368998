// Package curatedloader seeds the knowledge base with a fixed batch of
// hand-written documentation entries. It is the only loader that works with
// no network access, and it runs before the external sources.
package curatedloader

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

type curatedItem struct {
	title        string
	body         string
	sourceURL    string
	qualityScore float64
}

// curatedItems is the fixed seed batch. Scores are hand-assigned rather than
// run through the scorer: these entries are vetted, not scraped.
var curatedItems = []curatedItem{
	{
		title:     "Python Functions and Parameters",
		sourceURL: "https://docs.python.org/3/tutorial/controlflow.html#defining-functions",
		body: "Functions in Python are defined using the `def` keyword, followed by the " +
			"function name and a parenthesized list of parameters.\n\n" +
			"```python\ndef greet(name, greeting=\"Hello\"):\n    return f\"{greeting}, {name}!\"\n```\n\n" +
			"Parameters can have default values, making them optional at the call site. " +
			"Python also supports variable-length argument lists with *args and **kwargs, " +
			"keyword-only parameters, and positional-only parameters. A function without an " +
			"explicit return statement returns None.",
		qualityScore: 0.92,
	},
	{
		title:     "Python Data Structures: Lists and Dictionaries",
		sourceURL: "https://docs.python.org/3/tutorial/datastructures.html",
		body: "Lists are ordered, mutable sequences created with square brackets:\n\n" +
			"```python\nnumbers = [1, 2, 3]\nnumbers.append(4)\nnumbers[0]  # 1\n```\n\n" +
			"Dictionaries map keys to values and preserve insertion order:\n\n" +
			"```python\nperson = {\"name\": \"Ada\", \"born\": 1815}\nperson[\"name\"]  # 'Ada'\n```\n\n" +
			"Lists support slicing, comprehension syntax and in-place sorting. Dictionary keys " +
			"must be hashable; use .get() for lookups that may miss, and .items() to iterate " +
			"key/value pairs together.",
		qualityScore: 0.95,
	},
	{
		title:     "Object-Oriented Programming in Python",
		sourceURL: "https://docs.python.org/3/tutorial/classes.html",
		body: "Classes bundle data and behavior. The `class` statement creates a new type, and " +
			"`__init__` initializes each instance:\n\n" +
			"```python\nclass Point:\n    def __init__(self, x, y):\n        self.x = x\n        self.y = y\n\n" +
			"    def distance_from_origin(self):\n        return (self.x ** 2 + self.y ** 2) ** 0.5\n```\n\n" +
			"Python supports single and multiple inheritance, method overriding, and properties " +
			"for computed attributes. There is no enforced privacy; a single leading underscore " +
			"marks an attribute as internal by convention.",
		qualityScore: 0.93,
	},
	{
		title:     "Error Handling with try/except",
		sourceURL: "https://docs.python.org/3/tutorial/errors.html",
		body: "Exceptions are handled with try/except blocks. Catch the most specific exception " +
			"type you can:\n\n" +
			"```python\ntry:\n    value = int(text)\nexcept ValueError:\n    value = 0\nfinally:\n    cleanup()\n```\n\n" +
			"The else clause runs when no exception was raised, and finally always runs. Raise " +
			"your own errors with `raise`, and define custom exception types by subclassing " +
			"Exception. Bare `except:` clauses hide bugs; avoid them.",
		qualityScore: 0.94,
	},
	{
		title:     "Reading and Writing Files",
		sourceURL: "https://docs.python.org/3/tutorial/inputoutput.html#reading-and-writing-files",
		body: "Open files with the `open()` built-in and a context manager so they are closed " +
			"even on error:\n\n" +
			"```python\nwith open(\"data.txt\") as f:\n    for line in f:\n        process(line)\n\n" +
			"with open(\"out.txt\", \"w\") as f:\n    f.write(\"hello\\n\")\n```\n\n" +
			"Mode \"r\" reads text, \"w\" truncates and writes, \"a\" appends, and a \"b\" suffix " +
			"switches to binary mode. Iterating a file object yields lines lazily, which keeps " +
			"memory flat for large files.",
		qualityScore: 0.92,
	},
	{
		title:     "Modules and Imports",
		sourceURL: "https://docs.python.org/3/tutorial/modules.html",
		body: "A module is a file of Python definitions. Import it by name and access its " +
			"contents with dotted attributes:\n\n" +
			"```python\nimport math\nmath.sqrt(2)\n\nfrom collections import Counter\n```\n\n" +
			"Packages are directories of modules. The interpreter searches sys.path, so the " +
			"project layout determines what is importable. Keep `from module import *` out of " +
			"production code; it obscures where names come from.",
		qualityScore: 0.93,
	},
}

type CuratedLoader struct {
	dbc    *db.DB
	runID  uuid.UUID
	errors []error
}

func New(dbc *db.DB, runID uuid.UUID) *CuratedLoader {
	return &CuratedLoader{
		dbc:   dbc,
		runID: runID,
	}
}

func (l *CuratedLoader) Name() string {
	return "curated"
}

func (l *CuratedLoader) Errors() []error {
	return l.errors
}

// Load inserts each curated entry unless an item with the same source URL is
// already present, so re-triggering collection never duplicates the batch.
func (l *CuratedLoader) Load() {
	start := time.Now()
	created := 0

	for _, item := range curatedItems {
		var count int64
		if err := l.dbc.DB.Model(&models.ContentItem{}).
			Where("source_url = ?", item.sourceURL).
			Count(&count).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not check for existing item %q", item.title))
			continue
		}
		if count > 0 {
			log.Debugf("curated item %q already present, skipping", item.title)
			continue
		}

		record := models.ContentItem{
			Title:        item.title,
			Body:         item.body,
			SourceType:   models.SourceCurated,
			SourceURL:    item.sourceURL,
			QualityScore: item.qualityScore,
		}
		if err := l.dbc.DB.Create(&record).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not store curated item %q", item.title))
			continue
		}
		created++
	}

	log.Infof("curated loader stored %d of %d items in %+v", created, len(curatedItems), time.Since(start))
	dataloader.RecordRun(l.dbc, l.runID, l.Name(), created, l.errors, time.Since(start))
}
