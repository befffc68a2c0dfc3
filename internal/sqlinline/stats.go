package sqlinline

const QStatsTotals = `--sql 7f5be61d-0df5-4a98-8a43-f6d70f50259b
select coalesce(sum(amount), 0)::bigint as total_amount,
       count(*)::bigint as total_donations
from donations
where user_id = $1::uuid;
`

const QStatsByCategory = `--sql a66c883b-7464-4f54-bfdf-1978fda7cbdf
select category,
       sum(amount)::bigint as amount,
       count(*)::bigint as count
from donations
where user_id = $1::uuid
group by category
order by amount desc, category asc;
`

// QStatsMonthly buckets by calendar month in UTC. $2 is the inclusive window start.
const QStatsMonthly = `--sql 1a9efec2-f32f-4e2e-9c07-6a42757a01c0
select extract(year from created_at at time zone 'UTC')::int as year,
       extract(month from created_at at time zone 'UTC')::int as month,
       sum(amount)::bigint as amount,
       count(*)::bigint as count
from donations
where user_id = $1::uuid
  and created_at >= $2::timestamptz
group by 1, 2
order by 1 asc, 2 asc;
`
