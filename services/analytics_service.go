// services/analytics_service.go
package services

import (
	"sort"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// AnalyticsService derives reporting views from the consumption ledger,
// the recipe meal entries and the body tracking tables. Everything is
// recomputed on read over an inclusive [start, end] day range; empty
// bounds leave that side open. It never writes.
type AnalyticsService struct {
	db    *gorm.DB
	meals *MealService
}

func NewAnalyticsService(db *gorm.DB, meals *MealService) *AnalyticsService {
	return &AnalyticsService{db: db, meals: meals}
}

// dayRange is an inclusive calendar window. Canonical date strings do not
// order lexically, so membership is checked on parsed days.
type dayRange struct {
	start, end time.Time
	hasStart   bool
	hasEnd     bool
}

func newDayRange(start, end string) (dayRange, error) {
	var r dayRange
	if start != "" {
		t, err := utils.ParseDay(start)
		if err != nil {
			return r, err
		}
		r.start, r.hasStart = t, true
	}
	if end != "" {
		t, err := utils.ParseDay(end)
		if err != nil {
			return r, err
		}
		r.end, r.hasEnd = t, true
	}
	return r, nil
}

func (r dayRange) contains(day string) bool {
	t, err := utils.ParseDay(day)
	if err != nil {
		return false
	}
	if r.hasStart && t.Before(r.start) {
		return false
	}
	if r.hasEnd && t.After(r.end) {
		return false
	}
	return true
}

// DayTotal is one calendar day summed over every ledger entry, single
// recipe meal entries included.
type DayTotal struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Entries  int     `json:"entries"`
}

// DailyTotals returns per-day macro sums in chronological order. Entries
// whose rates are gone contribute nothing to the sums but still count.
func (s *AnalyticsService) DailyTotals(start, end string) ([]DayTotal, error) {
	r, err := newDayRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.meals.FetchAllConsumption()
	if err != nil {
		return nil, err
	}
	recipeRows, err := fetchRecipeConsumption(s.db, "")
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayTotal)
	get := func(day string) *DayTotal {
		if t, ok := byDay[day]; ok {
			return t
		}
		t := &DayTotal{Date: day}
		byDay[day] = t
		return t
	}
	addPtr := func(dst *float64, v *float64) {
		if v != nil {
			*dst += *v
		}
	}
	for _, row := range rows {
		if !r.contains(row.Date) {
			continue
		}
		t := get(row.Date)
		t.Entries++
		addPtr(&t.Calories, row.Kcal)
		addPtr(&t.Protein, row.Protein)
		addPtr(&t.Carbs, row.Carb)
		addPtr(&t.Fat, row.Fat)
	}
	for _, rc := range recipeRows {
		if !r.contains(rc.Date) {
			continue
		}
		t := get(rc.Date)
		t.Entries++
		addPtr(&t.Calories, rc.Kcal)
		addPtr(&t.Protein, rc.Protein)
		addPtr(&t.Carbs, rc.Carb)
		addPtr(&t.Fat, rc.Fat)
	}

	totals := make([]DayTotal, 0, len(byDay))
	for _, t := range byDay {
		t.Calories = round1(t.Calories)
		t.Protein = round1(t.Protein)
		t.Carbs = round1(t.Carbs)
		t.Fat = round1(t.Fat)
		totals = append(totals, *t)
	}
	sortByDay(totals, func(t DayTotal) string { return t.Date })
	return totals, nil
}

// WeekAverage averages a calendar week over the days that actually have
// entries, not over seven. Label is the earliest tracked date in the week.
type WeekAverage struct {
	Year        int     `json:"year"`
	Week        int     `json:"week"`
	Label       string  `json:"label"`
	Days        int     `json:"days"`
	AvgCalories float64 `json:"avg_calories"`
	AvgProtein  float64 `json:"avg_protein"`
	AvgCarbs    float64 `json:"avg_carbs"`
	AvgFat      float64 `json:"avg_fat"`
}

func (s *AnalyticsService) WeeklyAverages(start, end string) ([]WeekAverage, error) {
	totals, err := s.DailyTotals(start, end)
	if err != nil {
		return nil, err
	}

	type key struct{ year, week int }
	byWeek := make(map[key]*WeekAverage)
	var order []key
	for _, t := range totals {
		day, err := utils.ParseDay(t.Date)
		if err != nil {
			continue
		}
		y, w := day.ISOWeek()
		k := key{y, w}
		wa, ok := byWeek[k]
		if !ok {
			wa = &WeekAverage{Year: y, Week: w, Label: t.Date}
			byWeek[k] = wa
			order = append(order, k)
		}
		wa.Days++
		wa.AvgCalories += t.Calories
		wa.AvgProtein += t.Protein
		wa.AvgCarbs += t.Carbs
		wa.AvgFat += t.Fat
	}

	out := make([]WeekAverage, 0, len(order))
	for _, k := range order {
		wa := byWeek[k]
		n := float64(wa.Days)
		wa.AvgCalories = round1(wa.AvgCalories / n)
		wa.AvgProtein = round1(wa.AvgProtein / n)
		wa.AvgCarbs = round1(wa.AvgCarbs / n)
		wa.AvgFat = round1(wa.AvgFat / n)
		out = append(out, *wa)
	}
	return out, nil
}

// MacroDistribution shares out calories by macro using the 4/4/9 factors.
// All-zero input yields all-zero percentages rather than a division error.
type MacroDistribution struct {
	ProteinPct    float64 `json:"protein_pct"`
	CarbPct       float64 `json:"carb_pct"`
	FatPct        float64 `json:"fat_pct"`
	MacroCalories float64 `json:"macro_calories"`
}

func (s *AnalyticsService) MacroDistribution(start, end string) (*MacroDistribution, error) {
	totals, err := s.DailyTotals(start, end)
	if err != nil {
		return nil, err
	}
	var protein, carbs, fat float64
	for _, t := range totals {
		protein += t.Protein
		carbs += t.Carbs
		fat += t.Fat
	}
	pc := protein * 4
	cc := carbs * 4
	fc := fat * 9
	total := pc + cc + fc
	d := &MacroDistribution{MacroCalories: round1(total)}
	if total <= 0 {
		return d, nil
	}
	d.ProteinPct = round1(pc / total * 100)
	d.CarbPct = round1(cc / total * 100)
	d.FatPct = round1(fc / total * 100)
	return d, nil
}

// FrequencyEntry counts how often an ingredient was eaten.
type FrequencyEntry struct {
	Ingredient    string `json:"ingredient"`
	Times         int64  `json:"times"`
	TotalPortions int64  `json:"total_portions"`
}

// FoodFrequency returns the topN most eaten ingredients in the range by
// entry count, portions as tiebreaker. topN <= 0 defaults to 10.
func (s *AnalyticsService) FoodFrequency(start, end string, topN int) ([]FrequencyEntry, error) {
	if topN <= 0 {
		topN = 10
	}
	r, err := newDayRange(start, end)
	if err != nil {
		return nil, err
	}

	type freqRow struct {
		Date       string
		Ingredient string
		Portions   int64
	}
	var rows []freqRow
	err = s.db.
		Table("consumptions AS c").
		Joins("JOIN ingredient_quantities AS iq ON iq.id = c.ingredient_quantity_id AND iq.deleted_at IS NULL").
		Joins("JOIN ingredients AS i ON i.id = iq.ingredient_id AND i.deleted_at IS NULL").
		Where("c.deleted_at IS NULL").
		Select("c.date AS date, i.name AS ingredient, c.portions AS portions").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*FrequencyEntry)
	for _, row := range rows {
		if !r.contains(row.Date) {
			continue
		}
		e, ok := byName[row.Ingredient]
		if !ok {
			e = &FrequencyEntry{Ingredient: row.Ingredient}
			byName[row.Ingredient] = e
		}
		e.Times++
		e.TotalPortions += row.Portions
	}

	out := make([]FrequencyEntry, 0, len(byName))
	for _, e := range byName {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Times != out[j].Times {
			return out[i].Times > out[j].Times
		}
		if out[i].TotalPortions != out[j].TotalPortions {
			return out[i].TotalPortions > out[j].TotalPortions
		}
		return out[i].Ingredient < out[j].Ingredient
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// SummaryStats is the range overview card.
type SummaryStats struct {
	DaysTracked    int     `json:"days_tracked"`
	TotalEntries   int     `json:"total_entries"`
	DistinctFoods  int     `json:"distinct_foods"`
	TotalCalories  float64 `json:"total_calories"`
	AvgCaloriesDay float64 `json:"avg_calories_per_day"`
	AvgProteinDay  float64 `json:"avg_protein_per_day"`
	AvgCarbsDay    float64 `json:"avg_carbs_per_day"`
	AvgFatDay      float64 `json:"avg_fat_per_day"`
	FirstDay       string  `json:"first_day"`
	LastDay        string  `json:"last_day"`
}

func (s *AnalyticsService) SummaryStats(start, end string) (*SummaryStats, error) {
	totals, err := s.DailyTotals(start, end)
	if err != nil {
		return nil, err
	}
	stats := &SummaryStats{DaysTracked: len(totals)}
	var protein, carbs, fat float64
	for _, t := range totals {
		stats.TotalEntries += t.Entries
		stats.TotalCalories += t.Calories
		protein += t.Protein
		carbs += t.Carbs
		fat += t.Fat
	}
	stats.TotalCalories = round1(stats.TotalCalories)

	r, err := newDayRange(start, end)
	if err != nil {
		return nil, err
	}
	type foodRow struct {
		Date         string
		IngredientID uint
	}
	var foods []foodRow
	err = s.db.
		Table("consumptions AS c").
		Joins("JOIN ingredient_quantities AS iq ON iq.id = c.ingredient_quantity_id AND iq.deleted_at IS NULL").
		Where("c.deleted_at IS NULL").
		Select("c.date AS date, iq.ingredient_id AS ingredient_id").
		Scan(&foods).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{})
	for _, row := range foods {
		if r.contains(row.Date) {
			seen[row.IngredientID] = struct{}{}
		}
	}
	stats.DistinctFoods = len(seen)

	if len(totals) > 0 {
		n := float64(len(totals))
		stats.FirstDay = totals[0].Date
		stats.LastDay = totals[len(totals)-1].Date
		stats.AvgCaloriesDay = round1(stats.TotalCalories / n)
		stats.AvgProteinDay = round1(protein / n)
		stats.AvgCarbsDay = round1(carbs / n)
		stats.AvgFatDay = round1(fat / n)
	}
	return stats, nil
}

// TrendPoint is one day on the weight/calorie chart. StoredCalories comes
// from the manually logged calorie table, LedgerCalories from the summed
// meal entries; the two are shown side by side, never reconciled.
type TrendPoint struct {
	Date           string   `json:"date"`
	Weight         *float64 `json:"weight"`
	StoredCalories *float64 `json:"stored_calories"`
	LedgerCalories *float64 `json:"ledger_calories"`
}

// TrendSeries merges body weights, logged calories and ledger-derived
// calories into one chronologically sorted series over the range.
func (s *AnalyticsService) TrendSeries(start, end string) ([]TrendPoint, error) {
	r, err := newDayRange(start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*TrendPoint)
	get := func(day string) *TrendPoint {
		if p, ok := byDay[day]; ok {
			return p
		}
		p := &TrendPoint{Date: day}
		byDay[day] = p
		return p
	}

	var weights []models.BodyWeight
	if err := s.db.Find(&weights).Error; err != nil {
		return nil, err
	}
	for _, w := range weights {
		if !r.contains(w.Date) {
			continue
		}
		v := w.Weight
		get(w.Date).Weight = &v
	}

	var calories []models.CalorieEntry
	if err := s.db.Find(&calories).Error; err != nil {
		return nil, err
	}
	for _, c := range calories {
		if !r.contains(c.Date) {
			continue
		}
		v := c.Calories
		if c.TotalCalories != nil {
			v = *c.TotalCalories
		}
		stored := v
		get(c.Date).StoredCalories = &stored
	}

	totals, err := s.DailyTotals(start, end)
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		v := t.Calories
		get(t.Date).LedgerCalories = &v
	}

	series := make([]TrendPoint, 0, len(byDay))
	for _, p := range byDay {
		series = append(series, *p)
	}
	sortByDay(series, func(p TrendPoint) string { return p.Date })
	return series, nil
}
